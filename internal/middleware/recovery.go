package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/models"
)

// RecoveryMiddleware recovers from panics and returns a 500 error
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				metrics.ErrorsTotal.WithLabelValues("panic").Inc()

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Error: "Internal server error",
					Code:  "INTERNAL_ERROR",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
