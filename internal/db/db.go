// Package db records training runs in a SQLite database whose schema is
// managed by embedded golang-migrate migrations.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsEmbed embed.FS

// DevMigrationsDirEnv points at an on-disk migrations directory that
// replaces the embedded copy. Useful while writing a new migration.
const DevMigrationsDirEnv = "REFLECTIVITY_MIGRATIONS_DIR"

type DB struct {
	*sql.DB
}

// OpenDB opens the database at path without touching its schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps the foreign_keys pragma in force for every query.
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &DB{sqlDB}, nil
}

// NewDB opens the database at path and applies all pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	migrationsFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	schema, err := db.Schema(migrationsFS)
	if err == nil {
		err = schema.Up()
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// getMigrationsFS returns the migrations directory, preferring the
// development override when set.
func getMigrationsFS() (fs.FS, error) {
	if dir := os.Getenv(DevMigrationsDirEnv); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
		}
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(migrationsEmbed, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}
