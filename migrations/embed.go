// Package migrations embeds the SQL schema applied by database.EnsureSchema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
