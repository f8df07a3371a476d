package database

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/logging"
)

// WithScope creates middleware that attaches a pooled connection to the request.
// The connection is released when the handler returns. When no connection can be
// had the request is answered with 503 and the handler never runs.
func WithScope(db *DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	provider := NewScopeProvider(db)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, release, err := provider.WithScope(r.Context())
			if err != nil {
				if errors.Is(err, context.Canceled) {
					// Client went away while waiting for the pool.
					return
				}
				logger.Error("Failed to acquire database connection",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("error", logging.SanitizeError(err)))
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "database_unavailable", "Database connection unavailable")
				return
			}
			defer release()

			next(w, r.WithContext(ctx))
		}
	}
}

// writeError mirrors the handlers' JSON error body.
func writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
