// cmd/migrate/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
	"github.com/ammerola/backoffice-be/migrations"
)

const usage = `usage: migrate [flags] <command>

commands:
  up              apply pending migrations
  down [steps]    revert steps migrations (default 1)
  force <version> mark version as applied and clean
  status          print the schema version and applied migrations as JSON

flags:
`

func main() {
	var (
		dir        = flag.String("dir", "", "Read migrations from this directory instead of the embedded set")
		forceDirty = flag.Bool("force-dirty", false, "Clear a dirty flag before applying migrations")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Statement timeout for each migration")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.SetupLogger(*logLevel, "text")

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	migrator, err := db.NewMigrator(&db.MigrationConfig{
		DatabaseURL:      cfg.GetDatabaseURL(),
		SourcePath:       *dir,
		Source:           migrations.FS,
		ForceDirty:       *forceDirty,
		StatementTimeout: *timeout,
	}, log)
	if err != nil {
		log.Error("failed to prepare migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = run(context.Background(), migrator, flag.Args())
	if closeErr := migrator.Close(); closeErr != nil {
		log.Warn("failed to close migrator", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		log.Error("migrate failed", slog.String("command", flag.Arg(0)), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, m *db.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up(ctx)
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("steps must be a number: %w", err)
			}
			steps = n
		}
		return m.Down(ctx, steps)
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("version must be a number: %w", err)
		}
		return m.Force(ctx, v)
	case "status":
		status, err := m.Status(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
