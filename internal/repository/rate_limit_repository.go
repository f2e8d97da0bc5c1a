package repository

import (
	"context"
	"time"
)

// RateLimitRepository is a SQL-backed shared counter store, used when Redis
// is not deployed but several instances still need one view of each counter.
type RateLimitRepository interface {
	// Increment atomically bumps the counter for key and returns the new count
	// together with the time left in the current window.
	//
	// A missing or expired entry starts a fresh window: count 1, expiry now+window.
	// A live entry is incremented without touching its expiry.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// CleanupExpired removes entries whose window has ended.
	// Returns the number of entries removed.
	CleanupExpired(ctx context.Context) (int64, error)
}
