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

// CollectionRepository implements repository.CollectionRepository for SQLite.
type CollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new SQLite collection repository.
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func scanCollection(row rowScanner) (*models.Collection, error) {
	var (
		c                  models.Collection
		toolIDs, createdAt string
	)
	if err := row.Scan(&c.ID, &c.Fingerprint, &toolIDs, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if c.ToolIDs, err = decodeStrings(toolIDs); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &c, nil
}

// GetByFingerprint returns the saved collection or repository.ErrNotFound.
func (r *CollectionRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Collection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, tool_ids, created_at FROM collections WHERE fingerprint = ?`, fingerprint)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return c, nil
}

// Save overwrites the collection for fingerprint using an upsert on the
// unique fingerprint index.
func (r *CollectionRepository) Save(ctx context.Context, fingerprint string, toolIDs []string) (*models.Collection, error) {
	encoded, err := encodeStrings(toolIDs)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO collections (fingerprint, tool_ids, created_at) VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET tool_ids = excluded.tool_ids, created_at = excluded.created_at
		RETURNING id, fingerprint, tool_ids, created_at`,
		fingerprint, encoded, formatTimestamp(time.Now()))

	c, err := scanCollection(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	return c, nil
}

var _ repository.CollectionRepository = (*CollectionRepository)(nil)
