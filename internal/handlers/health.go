package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"learnloop/internal/contextutil"
	"learnloop/internal/llm"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	backend            llm.Backend
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, backend llm.Backend) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		backend:            backend,
		healthCheckTimeout: 5 * time.Second,
	}
}

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Models reported by the generation backend
	Models []string `json:"models,omitempty"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP reports the health of the database and the generation backend.
// A database failure is unhealthy (503); a backend failure only degrades (200).
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
	}
	httpStatus := http.StatusOK

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		resp.Checks["database"] = "error"
		resp.Issues = append(resp.Issues, "database_unavailable")
		resp.Status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = "ok"
	}

	if models, ok := h.checkBackend(checkCtx, logger); ok {
		resp.Checks["generation_backend"] = "ok"
		resp.Models = models
	} else {
		resp.Checks["generation_backend"] = "error"
		resp.Issues = append(resp.Issues, "generation_backend_unavailable")
		if resp.Status == StatusHealthy {
			resp.Status = StatusDegraded
		}
	}

	writeJSON(w, httpStatus, resp)
}

// checkBackend pings the backend and lists its models. A failed listing after a
// successful ping still counts as reachable.
func (h *HealthHandler) checkBackend(ctx context.Context, logger *slog.Logger) ([]string, bool) {
	if err := h.backend.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "generation backend health check failed", "error", err)
		return nil, false
	}
	models, err := h.backend.ListModels(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list models", "error", err)
		return nil, true
	}
	return models, true
}
