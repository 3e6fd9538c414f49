package config

import "time"

// Config holds runtime settings for the InvoiceDesk CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - WebsocketURL: endpoint of the realtime event feed.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: path of the local settings database.
//   - Theme: palette used until the user picks one ("light" or "dark").
type Config struct {
	APIBaseURL     string
	WebsocketURL   string
	RequestTimeout time.Duration
	DatabasePath   string
	Theme          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.WebsocketURL = "ws://127.0.0.1:8080/events"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "idesk.db"
	c.Theme = "light"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
