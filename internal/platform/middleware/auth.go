package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"nilclear/pkg/domain"
	"nilclear/pkg/requestcontext"
)

// PlatformValidator validates a bearer token and returns the platform it
// identifies.
type PlatformValidator interface {
	Validate(tokenString string) (domain.EntityID, error)
}

// RequirePlatformAuth guards deal endpoints. The authenticated platform ID is
// placed on the request context for the service-layer allowlist check.
func RequirePlatformAuth(validator PlatformValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			platform, err := validator.Validate(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				unauthorized(w)
				return
			}
			ctx := requestcontext.WithPlatformID(r.Context(), platform)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
