package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/phrazzld/cityinfo-api/internal/config"
	"github.com/phrazzld/cityinfo-api/internal/platform/postgres"
)

// migrationCommands lists the goose commands accepted by -migrate.
var migrationCommands = []string{"up", "up-by-one", "down", "redo", "reset", "status", "version"}

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It logs at error level and does not exit;
// the failing goose call returns the error to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// validateMigrationCommand rejects commands -migrate does not support.
func validateMigrationCommand(command string) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unsupported migration command %q (want one of %s)",
			command, strings.Join(migrationCommands, ", "))
	}
	return nil
}

// configureGoose points goose at the embedded migrations.
func configureGoose(logger *slog.Logger) error {
	goose.SetBaseFS(postgres.MigrationsFS)
	goose.SetTableName(postgres.MigrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	return goose.SetDialect("postgres")
}

// runMigrations executes a goose command against the configured database
// using the migrations embedded in the postgres package.
func runMigrations(ctx context.Context, cfg *config.Config, command string, args []string, logger *slog.Logger) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database URL is empty: set %s_DATABASE_URL", config.EnvPrefix)
	}

	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))
	if err := configureGoose(log); err != nil {
		return fmt.Errorf("failed to configure migrations: %w", err)
	}

	pool, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	log.Info("Executing migrations")
	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir, args...); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	log.Info("Migrations completed")
	return nil
}
