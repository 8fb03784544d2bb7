package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spares/backend/internal/infrastructure/config"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/infrastructure/migration"
	"github.com/spares/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Spares ledger database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Set the version without running SQL (repairs a dirty schema)
  drop                  Drop all tables (requires -confirm)
  create <name> [desc]  Write the next numbered migration pair (requires -path)
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: the set built into the binary)
  -log-level string     Log level: debug, info, warn, error (default: info)
  -confirm              Confirm drop

Environment:
  SPARES_DATABASE_HOST, SPARES_DATABASE_PORT, SPARES_DATABASE_USER,
  SPARES_DATABASE_PASSWORD, SPARES_DATABASE_DBNAME, SPARES_DATABASE_SSLMODE`

var errUsage = errors.New("usage")

// schemaCommand runs against the database. args excludes the command name.
type schemaCommand func(m *migration.Migrator, log *zap.Logger, args []string) error

var schemaCommands = map[string]schemaCommand{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		if n < 0 {
			return errUsage
		}
		return m.GoTo(uint(n))
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
	"drop": func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Drop() },
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	confirm := flag.Bool("confirm", false, "Confirm destructive commands (drop)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command, rest := args[0], args[1:]

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	src := migration.Source{FS: migrations.FS}
	if *path != "" {
		if src.Dir, err = filepath.Abs(*path); err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
	}

	switch command {
	case "create":
		err = create(src, rest, log)
	case "list":
		err = list(src)
	default:
		run, ok := schemaCommands[command]
		if !ok {
			log.Error("Unknown command", zap.String("command", command))
			flag.Usage()
			os.Exit(2)
		}
		if command == "drop" && !*confirm {
			log.Fatal("Drop removes the whole ledger history. Re-run with -confirm.")
		}
		err = withMigrator(src, log, func(m *migration.Migrator) error {
			return run(m, log, rest)
		})
	}

	if errors.Is(err, errUsage) {
		log.Error("Missing or invalid argument", zap.String("command", command))
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

// withMigrator connects with the configured database settings and hands a
// Migrator to fn.
func withMigrator(src migration.Source, log *zap.Logger, fn func(*migration.Migrator) error) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, src, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()
	return fn(m)
}

func create(src migration.Source, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	if src.Dir == "" {
		return errors.New("create needs -path pointing at the migrations directory")
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(src.Dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(src migration.Source) error {
	fsys := src.FS
	if src.Dir != "" {
		fsys = os.DirFS(src.Dir)
	}
	entries, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No migrations found")
	}
	for _, e := range entries {
		fmt.Printf("  %06d  %s\n", e.Version, e.Name)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errUsage
	}
	return n, nil
}
