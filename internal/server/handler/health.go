package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	started time.Time
	backend string
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. backend names the active slip
// persistence backend so probes can tell deployments apart.
func NewHealthHandler(backend string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		started: time.Now(),
		backend: backend,
		logger:  logger,
	}
}

// HealthCheck responds with a simple JSON status indicating the server is alive.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"backend":   h.backend,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
