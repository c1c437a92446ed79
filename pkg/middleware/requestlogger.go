package middleware

import (
	"log/slog"
	"net/http"

	"github.com/beanhouse/cafe-backend/pkg/logger"
)

// RequestLogger stores a request-scoped logger enriched with
// correlation_id, user_id, trace_id and span_id in the context. Handlers
// retrieve it with logger.FromContext. Mount after RequestLogging and
// Tracing so those fields are populated.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
