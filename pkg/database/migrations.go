package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/migrations"
)

// MigrationsTable records the applied schema version.
const MigrationsTable = "cbls_schema_migrations"

// SchemaVersion is the state of the schema as recorded by golang-migrate.
type SchemaVersion struct {
	Version uint
	Dirty   bool
	// Applied is false on an empty database.
	Applied bool
}

// RunMigrations applies every pending embedded migration. Safe to call on an
// up-to-date database.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, closeFn, err := newMigrator(db, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	before, err := version(m)
	if err != nil {
		return err
	}
	if before.Dirty {
		return fmt.Errorf("schema version %d is dirty; fix the database and force the version before migrating", before.Version)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)", zap.Uint("version", before.Version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	after, err := version(m)
	if err != nil {
		return err
	}
	logger.Info("Applied migrations",
		zap.Uint("from_version", before.Version),
		zap.Uint("to_version", after.Version))
	return nil
}

// MigrationVersion reports the current schema version without changing anything.
func MigrationVersion(db *sql.DB, logger *zap.Logger) (SchemaVersion, error) {
	m, closeFn, err := newMigrator(db, logger)
	if err != nil {
		return SchemaVersion{}, err
	}
	defer closeFn()
	return version(m)
}

func newMigrator(db *sql.DB, logger *zap.Logger) (*migrate.Migrate, func(), error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	closeFn := func() {
		// Closing the driver also closes db, which belongs to the caller.
		if srcErr := source.Close(); srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
	}
	return m, closeFn, nil
}

func version(m *migrate.Migrate) (SchemaVersion, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaVersion{Version: v, Dirty: dirty, Applied: true}, nil
}
