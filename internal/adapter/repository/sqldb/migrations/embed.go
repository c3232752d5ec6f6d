// Package migrations embeds the per-dialect schema files applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
