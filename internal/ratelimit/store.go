// Package ratelimit implements fixed-window request limiting keyed by
// identifier. Counters live in a shared store (Redis or the database) so every
// instance sees the same totals; when that store misbehaves the limiter keeps
// answering from an in-process FallbackStore until the shared store recovers.
package ratelimit

import (
	"context"
	"time"
)

// CounterStore is an atomic increment-with-expiry primitive. Increment adds
// one to key, starting a new window of the given length when the key is
// absent or expired, and returns the new count with the time left in the
// window. A negative ttl means the store could not report one.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	Name() string
}

// Sweeper is implemented by stores that need expired counters removed
// periodically.
type Sweeper interface {
	CleanupExpired(ctx context.Context) (int64, error)
}
