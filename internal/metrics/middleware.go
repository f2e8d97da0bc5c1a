package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware instruments HTTP handlers with request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 if WriteHeader not called
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// normalizePath maps URL paths to route templates so tool and share ids
// don't explode label cardinality
func normalizePath(path string) string {
	switch path {
	case "/health", "/metrics",
		"/api/tools", "/api/tools/search", "/api/tools/recommend",
		"/api/upvote", "/api/collections", "/api/collections/share", "/api/contact":
		return path
	}

	switch {
	case strings.HasPrefix(path, "/api/collections/share/"):
		return "/api/collections/share/:id"
	case strings.HasPrefix(path, "/api/tools/"):
		return "/api/tools/:id"
	default:
		return "/other"
	}
}
