// Package main implements the entry point for the CityInfo API server, which
// serves cities and their points of interest over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/cityinfo-api/internal/config"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
)

// main is the entry point for the cityinfo-api server.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cityinfo-api: %v\n", err)
		os.Exit(1)
	}
}

// run parses flags, loads configuration and either executes a migration
// command or serves HTTP until ctx is canceled.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("cityinfo-api", flag.ContinueOnError)
	flags.SetOutput(stderr)
	migrateCmd := flags.String("migrate", "",
		"run a migration command (up, up-by-one, down, redo, reset, status, version) and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("store", cfg.Store.Driver),
		slog.String("mail", cfg.Mail.Provider),
		slog.String("files", cfg.Files.Source))

	if *migrateCmd != "" {
		return runMigrations(ctx, cfg, *migrateCmd, flags.Args(), log)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
