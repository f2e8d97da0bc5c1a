package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// ContactRepository implements repository.ContactRepository for SQLite.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new SQLite contact repository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create stores a contact message. ID must be set by the caller.
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if c == nil || c.ID == "" {
		return repository.ErrInvalidInput
	}
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, message, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Message, string(c.Status), formatTimestamp(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", asConstraintViolation(err))
	}
	return nil
}

var _ repository.ContactRepository = (*ContactRepository)(nil)
