package ratelimit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/iecho/tooldir/internal/metrics"
)

// Modes reported by Limiter.Mode.
const (
	ModeShared   = "shared"   // shared store answering
	ModeFallback = "fallback" // shared store configured but unavailable
	ModeLocal    = "local"    // no shared store configured
)

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// ResetAtEpochMs is ResetAt in Unix milliseconds.
func (r Result) ResetAtEpochMs() int64 {
	return r.ResetAt.UnixMilli()
}

// ResetUnix is ResetAt rounded up to whole Unix seconds.
func (r Result) ResetUnix() int64 {
	sec := r.ResetAt.Unix()
	if r.ResetAt.Nanosecond() > 0 {
		sec++
	}
	return sec
}

// RetryAfter is the whole number of seconds until the window resets, at least 1.
func (r Result) RetryAfter(now time.Time) int64 {
	wait := r.ResetAt.Sub(now)
	secs := int64((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Options tunes a Limiter.
type Options struct {
	// StoreTimeout bounds each shared store call. Zero means 250ms.
	StoreTimeout time.Duration
	// Breaker short-circuits to the fallback after repeated failures. Nil disables it.
	Breaker *CircuitBreaker
	Logger  *slog.Logger
	Now     func() time.Time
}

// Limiter admits or rejects requests per identifier. It holds no policy:
// callers pass limit and window on every call.
type Limiter struct {
	shared   CounterStore
	fallback *FallbackStore
	timeout  time.Duration
	breaker  *CircuitBreaker
	logger   *slog.Logger
	now      func() time.Time

	degraded    atomic.Bool
	activations atomic.Int64
}

// New creates a Limiter. shared may be nil, in which case every call is
// served by fallback and no outage is ever reported.
func New(shared CounterStore, fallback *FallbackStore, opts Options) *Limiter {
	if fallback == nil {
		fallback = NewFallbackStore()
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if shared != nil {
		metrics.RateLimitStoreUp.Set(1)
	}
	return &Limiter{
		shared:   shared,
		fallback: fallback,
		timeout:  opts.StoreTimeout,
		breaker:  opts.Breaker,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Admit counts one request against identifier and reports whether it fits in
// limit requests per window. It never fails: shared store errors are absorbed
// and the fallback answers instead. Rejected requests still count.
func (l *Limiter) Admit(ctx context.Context, identifier string, limit int, window time.Duration) Result {
	count, ttl := l.increment(ctx, identifier, window)

	if ttl < 0 {
		ttl = window
	}
	res := Result{
		Allowed: count <= int64(limit),
		Limit:   limit,
		ResetAt: l.now().Add(ttl),
	}
	if res.Allowed {
		res.Remaining = limit - int(count)
	}
	return res
}

func (l *Limiter) increment(ctx context.Context, identifier string, window time.Duration) (int64, time.Duration) {
	if l.shared == nil {
		count, ttl, _ := l.fallback.Increment(ctx, identifier, window)
		return count, ttl
	}

	if !l.breaker.Allow() {
		return l.useFallback(ctx, identifier, window, "breaker_open", nil)
	}

	storeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	start := time.Now()
	count, ttl, err := l.shared.Increment(storeCtx, identifier, window)
	cancel()

	if err != nil {
		metrics.RateLimitStoreDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		l.breaker.OnFailure()
		return l.useFallback(ctx, identifier, window, "error", err)
	}

	metrics.RateLimitStoreDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	l.breaker.OnSuccess()
	if l.degraded.CompareAndSwap(true, false) {
		metrics.RateLimitStoreUp.Set(1)
		l.logger.Info("rate limit store recovered",
			"store", l.shared.Name(),
			"fallback_activations", l.activations.Load(),
		)
	}
	return count, ttl
}

func (l *Limiter) useFallback(ctx context.Context, identifier string, window time.Duration, reason string, cause error) (int64, time.Duration) {
	l.activations.Add(1)
	metrics.RateLimitFallbackTotal.WithLabelValues(reason).Inc()

	if l.degraded.CompareAndSwap(false, true) {
		metrics.RateLimitStoreUp.Set(0)
		l.logger.Warn("rate limit store unavailable, using in-process fallback",
			"store", l.shared.Name(),
			"reason", reason,
			"error", cause,
		)
	}

	count, ttl, _ := l.fallback.Increment(ctx, identifier, window)
	return count, ttl
}

// FallbackActivations is the number of admits served by the fallback because
// the shared store failed or was skipped.
func (l *Limiter) FallbackActivations() int64 {
	return l.activations.Load()
}

// Backend names the configured counter store.
func (l *Limiter) Backend() string {
	if l.shared == nil {
		return l.fallback.Name()
	}
	return l.shared.Name()
}

// Mode reports whether admits are currently served by the shared store.
func (l *Limiter) Mode() string {
	switch {
	case l.shared == nil:
		return ModeLocal
	case l.degraded.Load():
		return ModeFallback
	default:
		return ModeShared
	}
}

// RunCleanup sweeps expired counters from the fallback, and from the shared
// store when it needs it, every interval until ctx is done.
func (l *Limiter) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.sweep(ctx)
		}
	}
}

func (l *Limiter) sweep(ctx context.Context) {
	if n, _ := l.fallback.CleanupExpired(ctx); n > 0 {
		l.logger.Debug("cleaned up expired fallback rate limit entries", "count", n)
	}

	sweeper, ok := l.shared.(Sweeper)
	if !ok {
		return
	}
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := sweeper.CleanupExpired(sweepCtx)
	if err != nil {
		l.logger.Error("failed to cleanup expired rate limits", "error", err)
		return
	}
	if n > 0 {
		l.logger.Debug("cleaned up expired rate limit entries", "count", n)
	}
}
