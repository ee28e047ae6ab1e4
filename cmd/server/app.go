package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phrazzld/cityinfo-api/internal/config"
	"github.com/phrazzld/cityinfo-api/internal/files"
	"github.com/phrazzld/cityinfo-api/internal/mail"
	"github.com/phrazzld/cityinfo-api/internal/platform/memory"
	"github.com/phrazzld/cityinfo-api/internal/platform/postgres"
	"github.com/phrazzld/cityinfo-api/internal/platform/tracing"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	repos    store.RepositoryFactory
	pinger   store.Pinger
	mailer   mail.Mailer
	files    files.Source
	registry *prometheus.Registry

	// closers run in reverse order during cleanup.
	closers []func(context.Context) error
}

// newApplication creates a new application instance with all dependencies initialized.
// The store, mailer and file source are chosen by configuration here, once.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.closers = append(app.closers, shutdownTracing)

	if err := app.setupStore(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.setupMailer(); err != nil {
		app.cleanup()
		return nil, err
	}

	app.files, err = newFileSource(cfg.Files)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize file source: %w", err)
	}

	if cfg.Observability.MetricsEnabled {
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStore selects the entity store and wraps it with the city listing
// cache when one is configured.
func (app *application) setupStore(ctx context.Context) error {
	var repos store.RepositoryFactory

	switch app.config.Store.Driver {
	case "postgres":
		pool, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		repos = postgres.NewStore(pool, app.logger)
	case "memory":
		repos = memory.NewSeededStore(app.logger)
	default:
		return fmt.Errorf("unknown store driver %q", app.config.Store.Driver)
	}

	if ttl := app.config.Store.CityCacheTTLSeconds; ttl > 0 {
		repos = store.NewCachedRepositoryFactory(repos, time.Duration(ttl)*time.Second)
		app.logger.Info("City listing cache enabled", slog.Int("ttl_seconds", ttl))
	}

	app.repos = repos
	if p, ok := repos.(store.Pinger); ok {
		app.pinger = p
	}
	app.logger.Info("Entity store initialized", slog.String("driver", app.config.Store.Driver))
	return nil
}

// setupMailer selects the mail notifier.
func (app *application) setupMailer() error {
	switch app.config.Mail.Provider {
	case "cloud":
		m, err := mail.DialCloudMailer(app.config.Mail, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize cloud mailer: %w", err)
		}
		app.mailer = m
		app.closers = append(app.closers, func(context.Context) error { return m.Close() })
	case "local":
		app.mailer = mail.NewLocalMailer(app.config.Mail, nil, app.logger)
	default:
		return fmt.Errorf("unknown mail provider %q", app.config.Mail.Provider)
	}
	return nil
}

// newFileSource selects where the downloadable file is read from.
func newFileSource(cfg config.FilesConfig) (files.Source, error) {
	switch cfg.Source {
	case "s3":
		reader, err := files.NewMinioReader(cfg.S3)
		if err != nil {
			return nil, err
		}
		return files.NewS3Source(reader, cfg.S3.Bucket, cfg.Name), nil
	case "local":
		return files.NewLocalSource(cfg.Dir, cfg.Name), nil
	default:
		return nil, fmt.Errorf("unknown file source %q", cfg.Source)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("Error releasing application resources", slog.String("error", err.Error()))
	}
	app.logger.Info("Application shutdown completed")
}
