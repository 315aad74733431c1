// internal/adapters/db/migrations.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigrationConfig points at the database and the migration files. Source is
// the embedded set; SourcePath, when set, reads a directory instead.
type MigrationConfig struct {
	DatabaseURL      string
	SourcePath       string
	Source           fs.FS
	TableName        string
	SchemaName       string
	ForceDirty       bool
	StatementTimeout time.Duration
}

func (c *MigrationConfig) withDefaults() MigrationConfig {
	out := *c
	if out.TableName == "" {
		out.TableName = "schema_migrations"
	}
	if out.SchemaName == "" {
		out.SchemaName = "public"
	}
	if out.StatementTimeout == 0 {
		out.StatementTimeout = 10 * time.Minute
	}
	return out
}

// MigrationStatus is what the migrations table says about the schema
type MigrationStatus struct {
	CurrentVersion uint               `json:"current_version"`
	IsDirty        bool               `json:"is_dirty"`
	Applied        []AppliedMigration `json:"applied"`
}

type AppliedMigration struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// Migrator applies the schema migrations over a short lived database/sql
// connection; golang-migrate does not speak pgxpool
type Migrator struct {
	m      *migrate.Migrate
	sqlDB  *sql.DB
	cfg    MigrationConfig
	logger *slog.Logger
}

func NewMigrator(cfg *MigrationConfig, logger *slog.Logger) (*Migrator, error) {
	if cfg == nil {
		return nil, errors.New("migration config is required")
	}
	c := cfg.withDefaults()

	src, srcName, err := openSource(c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("pgx", c.DatabaseURL)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		src.Close()
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{
		MigrationsTable:  c.TableName,
		SchemaName:       c.SchemaName,
		StatementTimeout: c.StatementTimeout,
	})
	if err == nil {
		var m *migrate.Migrate
		if m, err = migrate.NewWithInstance(srcName, src, "postgres", driver); err == nil {
			return &Migrator{
				m:      m,
				sqlDB:  sqlDB,
				cfg:    c,
				logger: logger.With(slog.String("component", "migrator")),
			}, nil
		}
	}

	src.Close()
	sqlDB.Close()
	return nil, fmt.Errorf("failed to prepare migrations: %w", err)
}

func openSource(c MigrationConfig) (source.Driver, string, error) {
	switch {
	case c.SourcePath != "":
		d, err := source.Open("file://" + c.SourcePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open migrations dir %s: %w", c.SourcePath, err)
		}
		return d, "file", nil
	case c.Source != nil:
		d, err := iofs.New(c.Source, ".")
		if err != nil {
			return nil, "", fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		return d, "iofs", nil
	default:
		return nil, "", errors.New("migration source is required")
	}
}

// Up applies every pending migration. A dirty schema is an error unless
// ForceDirty is set, in which case the dirty version is marked clean first.
func (mg *Migrator) Up(ctx context.Context) error {
	version, dirty, err := mg.version()
	if err != nil {
		return err
	}
	if dirty {
		if !mg.cfg.ForceDirty {
			return fmt.Errorf("database is dirty at version %d; fix it and run force", version)
		}
		mg.logger.WarnContext(ctx, "clearing dirty flag", slog.Uint64("version", uint64(version)))
		if err := mg.m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version %d: %w", version, err)
		}
	}

	err = mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.InfoContext(ctx, "schema up to date", slog.Uint64("version", uint64(version)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, _ = mg.version()
	mg.logger.InfoContext(ctx, "migrations applied", slog.Uint64("version", uint64(version)))
	return nil
}

// Down reverts steps migrations, at least one
func (mg *Migrator) Down(ctx context.Context, steps int) error {
	steps = max(steps, 1)
	mg.logger.InfoContext(ctx, "reverting migrations", slog.Int("steps", steps))

	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}
	return nil
}

// Force records version as applied and clean without running anything
func (mg *Migrator) Force(ctx context.Context, version int) error {
	mg.logger.WarnContext(ctx, "forcing schema version", slog.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	version, dirty, err := mg.version()
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, mg.sqlDB, mg.cfg.SchemaName, mg.cfg.TableName)
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{CurrentVersion: version, IsDirty: dirty, Applied: applied}, nil
}

// version treats an empty migrations table as version 0
func (mg *Migrator) version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, dirty, nil
}

func appliedMigrations(ctx context.Context, sqlDB *sql.DB, schema, table string) ([]AppliedMigration, error) {
	rows, err := sqlDB.QueryContext(ctx,
		fmt.Sprintf(`SELECT version, dirty FROM %s.%s ORDER BY version ASC`, schema, table))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	applied := []AppliedMigration{}
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.Dirty); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

// Close releases the source and the database connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrationsWithRetry brings the schema up, retrying with a linear
// backoff while the database is still starting
func RunMigrationsWithRetry(ctx context.Context, cfg *MigrationConfig, logger *slog.Logger, attempts int) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * 2 * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if lastErr = migrateUp(ctx, cfg, logger); lastErr == nil {
			return nil
		}
		logger.WarnContext(ctx, "migration attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()))
	}
	return fmt.Errorf("migrations failed after %d attempts: %w", attempts, lastErr)
}

func migrateUp(ctx context.Context, cfg *MigrationConfig, logger *slog.Logger) error {
	mg, err := NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	return errors.Join(mg.Up(ctx), mg.Close())
}
