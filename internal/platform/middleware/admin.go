package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"nilclear/pkg/requestcontext"
)

// RequireAdminToken guards compliance-officer endpoints with a shared token.
// Comparison is constant-time to prevent timing attacks.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}
			ctx := requestcontext.WithActor(r.Context(), "compliance-officer")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
