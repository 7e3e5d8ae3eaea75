package migrations

import "embed"

// FS contains embedded SQLite migrations for the puzzle library.
//
//go:embed *.sql
var FS embed.FS
