package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/robogamehub/internal/api/apierr"
	"github.com/mcoot/robogamehub/internal/api/response"
)

// Pinger is anything whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the backing stores are reachable
type HealthHandler struct {
	pingers []Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger, pingers ...Pinger) *HealthHandler {
	return &HealthHandler{
		pingers: pingers,
		logger:  logger,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", slog.String("error", err.Error()))
			apierr.WriteError(w, apierr.NewUnavailableError("Store unavailable"))
			return
		}
	}

	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
