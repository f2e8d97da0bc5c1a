package ratelimit

import (
	"context"
	"time"

	"github.com/iecho/tooldir/internal/repository"
)

// DatabaseStore is the shared CounterStore for deployments without Redis. It
// relies on the repository's single-statement upsert for atomicity.
type DatabaseStore struct {
	repo repository.RateLimitRepository
}

// NewDatabaseStore wraps a RateLimitRepository.
func NewDatabaseStore(repo repository.RateLimitRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

// Increment implements CounterStore.
func (s *DatabaseStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return s.repo.Increment(ctx, key, window)
}

// CleanupExpired implements Sweeper.
func (s *DatabaseStore) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.CleanupExpired(ctx)
}

// Name implements CounterStore.
func (s *DatabaseStore) Name() string { return "database" }
