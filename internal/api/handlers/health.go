package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

type HealthHandler struct {
	Checks map[string]Checker
	Logger *slog.Logger
}

// Health reports liveness plus the state of each configured dependency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{"status": "ok"}
	if len(h.Checks) == 0 {
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for name, c := range h.Checks {
		if err := c.Check(ctx); err != nil {
			h.Logger.ErrorContext(ctx, "health check failed", "name", name, "err", err)
			checks[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	if status != http.StatusOK {
		res["status"] = "degraded"
	}
	res["checks"] = checks
	writeJSON(w, r, status, res)
}
