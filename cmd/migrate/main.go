package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/migration"
	"github.com/Goutham009/tradewave-sub005/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `Tradewave schema migrations

Usage:
  migrate [flags] <command> [argument]

Commands:
  up              Apply all pending migrations
  down            Roll back all migrations
  step <n>        Apply n migrations (negative rolls back)
  version         Show the applied version
  force <v>       Mark version v as applied (clears a dirty state)
  list            List available migrations
  create <name>   Write a new empty migration pair (requires -path)

Flags:
  -path string       Migrations directory (default: embedded set)
  -log-level string  debug, info, warn, error (default: info)

Database settings come from config.yaml or TRADEWAVE_DATABASE_* variables.`

var errUsage = errors.New("usage")

// schemaCommands run against a live database
var schemaCommands = map[string]func(m *migration.Migrator, arg string, log *zap.Logger) error{
	"up":   func(m *migration.Migrator, _ string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ string, _ *zap.Logger) error { return m.Down() },
	"step": func(m *migration.Migrator, arg string, _ *zap.Logger) error {
		n, err := number(arg)
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, arg string, _ *zap.Logger) error {
		v, err := number(arg)
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err == nil {
			log.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
		return err
	},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: *level, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch err := run(*dir, flag.Args(), log); {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	case err != nil:
		log.Fatal("migrate failed", zap.Strings("args", flag.Args()), zap.Error(err))
	}
}

func run(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}
	command, arg := args[0], ""
	if len(args) > 1 {
		arg = args[1]
	}

	var source fs.FS = migrations.FS
	if dir != "" {
		source = os.DirFS(dir)
	}

	switch command {
	case "create":
		if dir == "" || arg == "" {
			return fmt.Errorf("%w: migrate -path <dir> create <name>", errUsage)
		}
		path, err := migration.Create(dir, arg)
		if err == nil {
			log.Info("migration created", zap.String("up_file", path))
		}
		return err
	case "list":
		files, err := migration.List(source)
		for _, f := range files {
			fmt.Printf("  %06d  %s\n", f.Version, f.Name)
		}
		return err
	}

	apply, ok := schemaCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("reach database: %w", err)
	}

	var m *migration.Migrator
	if dir != "" {
		m, err = migration.NewFromDir(db, dir, log)
	} else {
		m, err = migration.NewEmbedded(db, migrations.FS, log)
	}
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	defer func() { _ = m.Close() }()

	return apply(m, arg, log)
}

func number(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: a number is required", errUsage)
	}
	return strconv.Atoi(arg)
}
