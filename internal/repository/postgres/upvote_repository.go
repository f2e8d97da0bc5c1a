package postgres

import (
	"context"
	"fmt"

	"github.com/iecho/tooldir/internal/repository"
)

// UpvoteRepository implements repository.UpvoteRepository for PostgreSQL.
type UpvoteRepository struct {
	pool *Pool
}

// NewUpvoteRepository creates a new PostgreSQL upvote repository.
func NewUpvoteRepository(pool *Pool) *UpvoteRepository {
	return &UpvoteRepository{pool: pool}
}

// Exists reports whether fingerprint already upvoted toolID.
func (r *UpvoteRepository) Exists(ctx context.Context, toolID, fingerprint string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM upvotes WHERE tool_id = $1 AND fingerprint = $2)`,
		toolID, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check upvote: %w", err)
	}
	return exists, nil
}

// Create inserts an upvote. A duplicate pair returns *repository.ConstraintViolation
// named upvotes_tool_fingerprint_key.
func (r *UpvoteRepository) Create(ctx context.Context, toolID, fingerprint string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO upvotes (tool_id, fingerprint) VALUES ($1, $2)`, toolID, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to create upvote: %w", asConstraintViolation(err))
	}
	return nil
}

// CountByTool returns the number of upvote rows for a tool.
func (r *UpvoteRepository) CountByTool(ctx context.Context, toolID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM upvotes WHERE tool_id = $1`, toolID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count upvotes: %w", err)
	}
	return n, nil
}

var _ repository.UpvoteRepository = (*UpvoteRepository)(nil)
