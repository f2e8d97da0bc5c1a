package mock

import (
	"context"
	"sync"
	"time"

	"github.com/iecho/tooldir/internal/repository"
)

// RateLimitRepository is an in-memory repository.RateLimitRepository.
// IncrementError makes every call fail, which is how tests simulate an
// unreachable shared store.
type RateLimitRepository struct {
	mu      sync.Mutex
	entries map[string]rateEntry
	now     func() time.Time

	IncrementError error
	Calls          int
}

type rateEntry struct {
	count int64
	end   time.Time
}

// NewRateLimitRepository creates an empty mock RateLimitRepository.
func NewRateLimitRepository() *RateLimitRepository {
	return &RateLimitRepository{entries: make(map[string]rateEntry), now: time.Now}
}

var _ repository.RateLimitRepository = (*RateLimitRepository)(nil)

func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.IncrementError != nil {
		return 0, 0, r.IncrementError
	}

	now := r.now()
	e, ok := r.entries[key]
	if !ok || !now.Before(e.end) {
		e = rateEntry{end: now.Add(window)}
	}
	e.count++
	r.entries[key] = e
	return e.count, e.end.Sub(now), nil
}

func (r *RateLimitRepository) CleanupExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var n int64
	for k, e := range r.entries {
		if !now.Before(e.end) {
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

// HealthRepository is a mock repository.HealthRepository.
type HealthRepository struct {
	PingError error
}

var _ repository.HealthRepository = (*HealthRepository)(nil)

func (r *HealthRepository) Ping(ctx context.Context) error {
	return r.PingError
}
