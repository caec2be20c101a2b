// Package appfs embeds the static files the application needs at runtime:
// database migrations, email templates and the common passwords list.
package appfs

import (
	"embed"
	"io/fs"
)

// "all:" keeps the "_" prefixed layouts, which a plain directory embed skips.
//
//go:embed migrations all:templates data
var FS embed.FS

// Glob returns the names of all embedded files matching pattern.
func Glob(pattern string) ([]string, error) {
	return fs.Glob(FS, pattern)
}

// MigrationsDir returns the migrations directory of the given database engine.
func MigrationsDir(engine string) string {
	if engine == "sqlite" {
		return "migrations/sqlite"
	}
	return "migrations/postgres"
}
