package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// SharedCollectionRepository implements repository.SharedCollectionRepository for PostgreSQL.
type SharedCollectionRepository struct {
	pool *Pool
}

// NewSharedCollectionRepository creates a new PostgreSQL shared collection repository.
func NewSharedCollectionRepository(pool *Pool) *SharedCollectionRepository {
	return &SharedCollectionRepository{pool: pool}
}

func (r *SharedCollectionRepository) getOne(ctx context.Context, column, value string) (*models.SharedCollection, error) {
	var sc models.SharedCollection
	err := r.pool.QueryRow(ctx,
		`SELECT id, tool_ids, tool_hash, created_at FROM shared_collections WHERE `+column+` = $1`, value).
		Scan(&sc.ID, &sc.ToolIDs, &sc.ToolHash, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shared collection: %w", err)
	}
	sc.ToolIDs = nonNil(sc.ToolIDs)
	return &sc, nil
}

// GetByID returns the shared collection or repository.ErrNotFound.
func (r *SharedCollectionRepository) GetByID(ctx context.Context, id string) (*models.SharedCollection, error) {
	return r.getOne(ctx, "id", id)
}

// GetByHash returns the shared collection with this content hash or repository.ErrNotFound.
func (r *SharedCollectionRepository) GetByHash(ctx context.Context, hash string) (*models.SharedCollection, error) {
	return r.getOne(ctx, "tool_hash", hash)
}

// Create inserts a shared collection. A duplicate hash returns
// *repository.ConstraintViolation named shared_collections_tool_hash_key.
func (r *SharedCollectionRepository) Create(ctx context.Context, sc *models.SharedCollection) error {
	if sc == nil || sc.ID == "" || sc.ToolHash == "" {
		return repository.ErrInvalidInput
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO shared_collections (id, tool_ids, tool_hash, created_at) VALUES ($1, $2, $3, $4)`,
		sc.ID, nonNil(sc.ToolIDs), sc.ToolHash, sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shared collection: %w", asConstraintViolation(err))
	}
	return nil
}

// UpdateToolIDs rewrites the stored order of an existing shared collection.
func (r *SharedCollectionRepository) UpdateToolIDs(ctx context.Context, id string, toolIDs []string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shared_collections SET tool_ids = $1 WHERE id = $2`, nonNil(toolIDs), id)
	if err != nil {
		return fmt.Errorf("failed to update shared collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.SharedCollectionRepository = (*SharedCollectionRepository)(nil)
