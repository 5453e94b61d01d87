// Package migrations embeds the SQL schema for the audit log sink.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
