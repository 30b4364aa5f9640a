package migrations

import "embed"

// FS contains embedded SQLite migrations for profile storage.
//
//go:embed *.sql
var FS embed.FS
