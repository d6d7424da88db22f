// Package migrations embeds the vault schema migration files so the
// container can be created and upgraded without external assets.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
