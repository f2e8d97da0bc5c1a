package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// SharedCollectionRepository implements repository.SharedCollectionRepository for SQLite.
type SharedCollectionRepository struct {
	db *sql.DB
}

// NewSharedCollectionRepository creates a new SQLite shared collection repository.
func NewSharedCollectionRepository(db *sql.DB) *SharedCollectionRepository {
	return &SharedCollectionRepository{db: db}
}

func (r *SharedCollectionRepository) getOne(ctx context.Context, where string, arg string) (*models.SharedCollection, error) {
	var (
		sc                 models.SharedCollection
		toolIDs, createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tool_ids, tool_hash, created_at FROM shared_collections WHERE `+where+` = ?`, arg).
		Scan(&sc.ID, &toolIDs, &sc.ToolHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shared collection: %w", err)
	}

	if sc.ToolIDs, err = decodeStrings(toolIDs); err != nil {
		return nil, err
	}
	if sc.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
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

// Create inserts a shared collection. A duplicate hash or id returns
// *repository.ConstraintViolation.
func (r *SharedCollectionRepository) Create(ctx context.Context, sc *models.SharedCollection) error {
	if sc == nil || sc.ID == "" || sc.ToolHash == "" {
		return repository.ErrInvalidInput
	}
	encoded, err := encodeStrings(sc.ToolIDs)
	if err != nil {
		return err
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shared_collections (id, tool_ids, tool_hash, created_at) VALUES (?, ?, ?, ?)`,
		sc.ID, encoded, sc.ToolHash, formatTimestamp(sc.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create shared collection: %w", asConstraintViolation(err))
	}
	return nil
}

// UpdateToolIDs rewrites the stored order of an existing shared collection.
func (r *SharedCollectionRepository) UpdateToolIDs(ctx context.Context, id string, toolIDs []string) error {
	encoded, err := encodeStrings(toolIDs)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE shared_collections SET tool_ids = ? WHERE id = ?`, encoded, id)
	if err != nil {
		return fmt.Errorf("failed to update shared collection: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.SharedCollectionRepository = (*SharedCollectionRepository)(nil)
