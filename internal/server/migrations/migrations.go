// Package migrations embeds the goose migrations of the local identity store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
