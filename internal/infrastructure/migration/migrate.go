// Package migration applies the ledger schema with golang-migrate and
// scaffolds new numbered migration files.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Source says where migration files are read from. Dir wins over FS.
type Source struct {
	Dir string
	FS  fs.FS
}

// Migrator runs schema migrations against one postgres database
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New wraps an open postgres connection. Closing the Migrator closes db.
func New(db *sql.DB, src Source, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: postgres driver: %w", err)
	}

	var m *migrate.Migrate
	switch {
	case src.Dir != "":
		m, err = migrate.NewWithDatabaseInstance("file://"+src.Dir, "postgres", target)
	case src.FS != nil:
		files, ferr := iofs.New(src.FS, ".")
		if ferr != nil {
			return nil, fmt.Errorf("migration: embedded source: %w", ferr)
		}
		m, err = migrate.NewWithInstance("iofs", files, "postgres", target)
	default:
		return nil, errors.New("migration: no source configured")
	}
	if err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}

	return &Migrator{m: m, log: logger}, nil
}

// run executes step, treating ErrNoChange as success, and logs the
// resulting version.
func (mg *Migrator) run(op string, step func() error, fields ...zap.Field) error {
	mg.log.Info("Migrating", append(fields, zap.String("op", op))...)

	err := step()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Schema unchanged", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s: %w", op, err)
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migration finished",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down rolls back every migration
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps applies n migrations; a negative n rolls back
func (mg *Migrator) Steps(n int) error {
	return mg.run("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

// Version returns the applied version; 0 means nothing has been applied
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running SQL. It is the repair
// path for a schema left dirty by a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("migration force %d: %w", version, err)
	}
	return nil
}

// Drop removes every table, the ledger history included
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping every table")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("migration drop: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return multierr.Combine(srcErr, dbErr)
}
