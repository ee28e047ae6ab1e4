package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// healthCheckTimeout bounds the store ping.
const healthCheckTimeout = 2 * time.Second

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status" xml:"Status"`
	Store  string `json:"store"  xml:"Store"`
}

// HealthHandler reports whether the service and its store are available.
type HealthHandler struct {
	store  store.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(pinger store.Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		store:  pinger,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health requests. It responds 503 when the store
// cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Store: "unchecked"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("store ping failed",
			slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Store: "down"})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Store: "up"})
}
