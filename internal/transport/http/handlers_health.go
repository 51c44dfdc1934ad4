package httptransport

import (
	"context"
	"net/http"
	"time"

	"nilclear/pkg/platform/httputil"
)

// HandleHealthz handles GET /healthz requests. Liveness only.
func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz handles GET /readyz requests: every configured backing
// dependency must answer within the probe budget.
func (h *Handler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.readiness))
	for _, check := range h.readiness {
		if err := check.Check(ctx); err != nil {
			checks[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[check.Name] = "ok"
	}
	httputil.WriteJSON(w, status, checks)
}
