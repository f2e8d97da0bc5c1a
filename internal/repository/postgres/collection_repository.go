package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// CollectionRepository implements repository.CollectionRepository for PostgreSQL.
type CollectionRepository struct {
	pool *Pool
}

// NewCollectionRepository creates a new PostgreSQL collection repository.
func NewCollectionRepository(pool *Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

// GetByFingerprint returns the saved collection or repository.ErrNotFound.
func (r *CollectionRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Collection, error) {
	var c models.Collection
	err := r.pool.QueryRow(ctx,
		`SELECT id, fingerprint, tool_ids, created_at FROM collections WHERE fingerprint = $1`, fingerprint).
		Scan(&c.ID, &c.Fingerprint, &c.ToolIDs, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	c.ToolIDs = nonNil(c.ToolIDs)
	return &c, nil
}

// Save overwrites the collection for fingerprint with an upsert on collections_fingerprint_key.
func (r *CollectionRepository) Save(ctx context.Context, fingerprint string, toolIDs []string) (*models.Collection, error) {
	var c models.Collection
	err := r.pool.QueryRow(ctx, `
		INSERT INTO collections (fingerprint, tool_ids, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (fingerprint) DO UPDATE SET tool_ids = EXCLUDED.tool_ids, created_at = EXCLUDED.created_at
		RETURNING id, fingerprint, tool_ids, created_at`,
		fingerprint, nonNil(toolIDs)).Scan(&c.ID, &c.Fingerprint, &c.ToolIDs, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	c.ToolIDs = nonNil(c.ToolIDs)
	return &c, nil
}

var _ repository.CollectionRepository = (*CollectionRepository)(nil)
