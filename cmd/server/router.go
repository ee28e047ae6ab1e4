package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/phrazzld/cityinfo-api/internal/api"
	apiMiddleware "github.com/phrazzld/cityinfo-api/internal/api/middleware"
	"github.com/phrazzld/cityinfo-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	if app.config.Observability.MetricsEnabled {
		r.Use(apiMiddleware.NewMetrics(app.registry).Handler)
	}
	r.Use(apiMiddleware.NewRateLimiter(app.config.Server.RateLimitPerSecond, app.config.Server.RateLimitBurst))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{api.PaginationHeader, shared.TraceIDHeader, "Location"},
	}).Handler)

	api.RegisterRoutes(r, api.Handlers{
		Cities:           api.NewCityHandler(app.repos, app.logger),
		PointsOfInterest: api.NewPointOfInterestHandler(app.repos, app.mailer, app.logger),
		Files:            api.NewFileHandler(app.files, app.logger),
	})

	r.Get("/health", api.NewHealthHandler(app.pinger, app.logger).Health)

	if app.config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	}

	if app.config.Observability.TracingEnabled {
		return otelhttp.NewHandler(r, app.config.Observability.ServiceName)
	}
	return r
}
