// Package migrations embeds the schema for the local settings database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
