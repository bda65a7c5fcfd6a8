package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

// DatabaseChecker reports database reachability.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	db DatabaseChecker
}

// NewHealthHandler creates a HealthHandler. db may be nil.
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck handles GET /v1/health-check.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check: database unreachable")
			writeJSON(w, r, http.StatusServiceUnavailable, errorBody{Error: errorDetail{
				Code:    CodeUnavailable,
				Message: "database unavailable",
			}})
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
