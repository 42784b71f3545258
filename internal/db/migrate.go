package db

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/banshee-data/reflectivity.report/internal/monitoring"
)

// Schema moves a registry database between migration versions.
type Schema struct {
	m *migrate.Migrate
}

// Schema binds the migrations in migrationsFS to db. The returned value is
// never closed: closing it would close db's connection too.
func (db *DB) Schema(migrationsFS fs.FS) (*Schema, error) {
	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return &Schema{m: m}, nil
}

// Up applies every pending migration. Being current already is not an error.
func (s *Schema) Up() error {
	return settle(s.m.Up(), "migration up failed")
}

// Down rolls back the most recent migration.
func (s *Schema) Down() error {
	return settle(s.m.Steps(-1), "migration down failed")
}

// To migrates up or down to version.
func (s *Schema) To(version uint) error {
	return settle(s.m.Migrate(version), fmt.Sprintf("migration to version %d failed", version))
}

// Force records version as current without running any SQL. Only for
// recovering from a dirty state.
func (s *Schema) Force(version int) error {
	if err := s.m.Force(version); err != nil {
		return fmt.Errorf("force migration to version %d failed: %w", version, err)
	}
	return nil
}

// Version reports the applied version and whether the last migration
// stopped half way. A fresh database is version 0.
func (s *Schema) Version() (uint, bool, error) {
	version, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func settle(err error, msg string) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// migrateLogger routes golang-migrate output through monitoring.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return monitoring.Verbose() }
