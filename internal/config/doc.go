// Package config loads runtime configuration for the InvoiceDesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-w string   websocket endpoint of the event feed
//	-t int      request timeout (seconds)
//	-d string   path of the local settings database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://billing.example.com/api",
//	  "websocket_url": "wss://billing.example.com/events",
//	  "request_timeout": "30s",
//	  "database_path": "/home/user/.idesk/idesk.db"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
