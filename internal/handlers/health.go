package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository"
)

// healthCheckTimeout bounds the database ping
const healthCheckTimeout = 5 * time.Second

// Health status values
const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// setHealthCacheHeaders prevents intermediaries from caching health results
func setHealthCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// HealthHandler reports database connectivity and the rate limiter backend.
// A rate limiter running on its in-process fallback is degraded but still
// serves traffic, so only a failed database ping returns 503.
func HealthHandler(repos *repository.Repositories, limiter *ratelimit.Limiter, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := models.HealthResponse{
			Status:         healthStatusHealthy,
			UptimeSeconds:  int64(time.Since(startTime).Seconds()),
			Database:       "ok",
			DatabaseType:   repos.DatabaseType,
			RateLimitStore: limiter.Backend(),
			RateLimitMode:  limiter.Mode(),
			Fallbacks:      limiter.FallbackActivations(),
		}

		status := http.StatusOK
		if err := repos.Health.Ping(ctx); err != nil {
			slog.Error("health check database ping failed", "error", err)
			resp.Status = healthStatusUnhealthy
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else if resp.RateLimitMode == ratelimit.ModeFallback {
			resp.Status = healthStatusDegraded
		}

		switch resp.Status {
		case healthStatusHealthy:
			metrics.HealthStatus.Set(2)
		case healthStatusDegraded:
			metrics.HealthStatus.Set(1)
		default:
			metrics.HealthStatus.Set(0)
		}

		setHealthCacheHeaders(w)
		sendJSON(w, status, resp)
	}
}
