// Package migrations embeds the goose migrations of the local index, one
// directory per SQL dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// SQLite returns the migrations for the sqlite3 dialect.
func SQLite() fs.FS {
	sub, _ := fs.Sub(Migrations, "sqlite")
	return sub
}

// Postgres returns the migrations for the postgres dialect.
func Postgres() fs.FS {
	sub, _ := fs.Sub(Migrations, "postgres")
	return sub
}
