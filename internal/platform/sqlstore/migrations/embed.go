// Package migrations holds the goose schema migrations shared by every dialect.
package migrations

import "embed"

// FS contains the embedded SQL migrations.
//
//go:embed *.sql
var FS embed.FS
