package repository

import (
	"context"

	"github.com/iecho/tooldir/internal/models"
)

// CollectionRepository stores one personal collection per fingerprint.
type CollectionRepository interface {
	// GetByFingerprint returns the saved collection or ErrNotFound.
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.Collection, error)

	// Save replaces the collection for fingerprint, creating it if absent.
	// Implemented as an upsert on the unique fingerprint index so concurrent
	// saves never produce two rows.
	Save(ctx context.Context, fingerprint string, toolIDs []string) (*models.Collection, error)
}

// SharedCollectionRepository stores content-addressed shared collections.
type SharedCollectionRepository interface {
	// GetByID returns the shared collection or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.SharedCollection, error)

	// GetByHash returns the shared collection with this content hash or ErrNotFound.
	GetByHash(ctx context.Context, hash string) (*models.SharedCollection, error)

	// Create inserts a new shared collection. A hash (or id) already present
	// returns *ConstraintViolation.
	Create(ctx context.Context, sc *models.SharedCollection) error

	// UpdateToolIDs rewrites the stored order of an existing collection.
	// The hash is unchanged because the set is unchanged.
	UpdateToolIDs(ctx context.Context, id string, toolIDs []string) error
}

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	// Create assigns CreatedAt (and Status when empty) and inserts the message.
	Create(ctx context.Context, c *models.Contact) error
}
