package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iecho/tooldir/internal/repository"
)

// RateLimitRepository implements repository.RateLimitRepository for PostgreSQL.
type RateLimitRepository struct {
	pool *Pool
}

// NewRateLimitRepository creates a new PostgreSQL rate limit repository.
func NewRateLimitRepository(pool *Pool) *RateLimitRepository {
	return &RateLimitRepository{pool: pool}
}

const maxKeyLength = 256

type counter struct {
	count, end int64
}

// Increment bumps the counter for key with a single INSERT .. ON CONFLICT.
// PostgreSQL locks the conflicting row, so concurrent callers are serialized
// and each sees a distinct count.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if key == "" || len(key) > maxKeyLength {
		return 0, 0, fmt.Errorf("invalid rate limit key length %d: %w", len(key), repository.ErrInvalidInput)
	}
	if window <= 0 {
		return 0, 0, fmt.Errorf("window duration must be positive: %w", repository.ErrInvalidInput)
	}

	now := time.Now().UnixMilli()
	c, err := withRetry(ctx, defaultRetries, func() (counter, error) {
		var c counter
		err := r.pool.QueryRow(ctx, `
			INSERT INTO rate_limits (key, request_count, window_end) VALUES ($1, 1, $2)
			ON CONFLICT (key) DO UPDATE SET
				request_count = CASE WHEN rate_limits.window_end <= $3 THEN 1 ELSE rate_limits.request_count + 1 END,
				window_end = CASE WHEN rate_limits.window_end <= $3 THEN EXCLUDED.window_end ELSE rate_limits.window_end END
			RETURNING request_count, window_end`,
			key, now+window.Milliseconds(), now).Scan(&c.count, &c.end)
		return c, err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return c.count, time.Duration(c.end-now) * time.Millisecond, nil
}

// CleanupExpired removes entries whose window has ended.
func (r *RateLimitRepository) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_limits WHERE window_end <= $1`, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired rate limits: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		slog.Debug("cleaned up expired rate limit entries", "count", n)
	}
	return tag.RowsAffected(), nil
}

var _ repository.RateLimitRepository = (*RateLimitRepository)(nil)
