package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/ratelimit"
)

// RateGuard applies the configured per-action policies to a Limiter and
// shapes the HTTP side: X-RateLimit-* headers on every checked response and a
// 429 with Retry-After on rejection.
type RateGuard struct {
	limiter *ratelimit.Limiter
	limits  *config.RateLimits
	now     func() time.Time
}

// NewRateGuard creates a RateGuard.
func NewRateGuard(limiter *ratelimit.Limiter, limits *config.RateLimits) *RateGuard {
	return &RateGuard{limiter: limiter, limits: limits, now: time.Now}
}

// Allow counts the request against action for fingerprint. It returns false
// after writing the 429 response; the caller must stop processing.
func (g *RateGuard) Allow(w http.ResponseWriter, r *http.Request, action, fingerprint string) bool {
	policy, ok := g.limits.Policy(action)
	if !ok {
		slog.Warn("no rate limit policy configured", "action", action)
		return true
	}

	res := g.limiter.Admit(r.Context(), action+":"+fingerprint, policy.Limit, policy.Window)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetUnix(), 10))

	if res.Allowed {
		metrics.RateLimitDecisionsTotal.WithLabelValues(action, "allowed").Inc()
		return true
	}

	metrics.RateLimitDecisionsTotal.WithLabelValues(action, "rejected").Inc()
	slog.Warn("rate limit exceeded",
		"action", action,
		"fingerprint", fingerprint,
		"limit", res.Limit,
	)
	h.Set("Retry-After", strconv.FormatInt(res.RetryAfter(g.now()), 10))
	sendError(w, "Rate limit exceeded. Please try again later.", "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests)
	return false
}
