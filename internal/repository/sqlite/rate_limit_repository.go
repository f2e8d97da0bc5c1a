package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/iecho/tooldir/internal/repository"
)

// RateLimitRepository implements repository.RateLimitRepository for SQLite.
type RateLimitRepository struct {
	db *sql.DB
}

// NewRateLimitRepository creates a new SQLite rate limit repository.
func NewRateLimitRepository(db *sql.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// maxKeyLength bounds keys; real keys are "<action>:<64 hex chars>".
const maxKeyLength = 256

// Increment bumps the counter for key in one statement. The CASE expressions
// read the pre-update row, so an expired window restarts at 1 with a new end.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if key == "" || len(key) > maxKeyLength {
		return 0, 0, fmt.Errorf("invalid rate limit key length %d: %w", len(key), repository.ErrInvalidInput)
	}
	if window <= 0 {
		return 0, 0, fmt.Errorf("window duration must be positive: %w", repository.ErrInvalidInput)
	}

	now := time.Now().UnixMilli()
	windowEnd := now + window.Milliseconds()

	var count, end int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rate_limits (key, request_count, window_end) VALUES (?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			request_count = CASE WHEN rate_limits.window_end <= ? THEN 1 ELSE rate_limits.request_count + 1 END,
			window_end = CASE WHEN rate_limits.window_end <= ? THEN excluded.window_end ELSE rate_limits.window_end END
		RETURNING request_count, window_end`,
		key, windowEnd, now, now).Scan(&count, &end)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return count, time.Duration(end-now) * time.Millisecond, nil
}

// CleanupExpired removes entries whose window has ended.
func (r *RateLimitRepository) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE window_end <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		slog.Debug("cleaned up expired rate limit entries", "count", rowsAffected)
	}

	return rowsAffected, nil
}

var _ repository.RateLimitRepository = (*RateLimitRepository)(nil)
