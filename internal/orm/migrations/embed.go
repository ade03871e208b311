// Package migrations embeds the SQL files that create the blog schema.
package migrations

import "embed"

// FS holds the migration files at its root; pass migrate.WithDirectory(Dir).
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS containing the migrations.
const Dir = "."
