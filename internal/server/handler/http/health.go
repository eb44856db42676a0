package http

import (
	"context"
	"net/http"

	"github.com/SRAS2024/About-Me/internal/service"
)

// HealthChecker reports service and database status.
type HealthChecker interface {
	Check(ctx context.Context) service.HealthStatus
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	Checker HealthChecker
}

// Health always answers 200 so the process is seen as alive while the
// database is down; db_ok carries the database state.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Checker.Check(r.Context()))
}
