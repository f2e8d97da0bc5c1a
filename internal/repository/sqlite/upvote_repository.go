package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iecho/tooldir/internal/repository"
)

// UpvoteRepository implements repository.UpvoteRepository for SQLite.
type UpvoteRepository struct {
	db *sql.DB
}

// NewUpvoteRepository creates a new SQLite upvote repository.
func NewUpvoteRepository(db *sql.DB) *UpvoteRepository {
	return &UpvoteRepository{db: db}
}

// Exists reports whether fingerprint already upvoted toolID.
func (r *UpvoteRepository) Exists(ctx context.Context, toolID, fingerprint string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM upvotes WHERE tool_id = ? AND fingerprint = ? LIMIT 1`, toolID, fingerprint).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check upvote: %w", err)
	}
	return true, nil
}

// Create inserts an upvote. A duplicate (tool, fingerprint) pair returns
// *repository.ConstraintViolation.
func (r *UpvoteRepository) Create(ctx context.Context, toolID, fingerprint string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO upvotes (tool_id, fingerprint, created_at) VALUES (?, ?, ?)`,
		toolID, fingerprint, formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to create upvote: %w", asConstraintViolation(err))
	}
	return nil
}

// CountByTool returns the number of upvote rows for a tool.
func (r *UpvoteRepository) CountByTool(ctx context.Context, toolID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upvotes WHERE tool_id = ?`, toolID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count upvotes: %w", err)
	}
	return n, nil
}

var _ repository.UpvoteRepository = (*UpvoteRepository)(nil)
