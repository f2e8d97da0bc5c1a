package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// ContactRepository implements repository.ContactRepository for PostgreSQL.
type ContactRepository struct {
	pool *Pool
}

// NewContactRepository creates a new PostgreSQL contact repository.
func NewContactRepository(pool *Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
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

	_, err := r.pool.Exec(ctx,
		`INSERT INTO contacts (id, name, email, message, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Email, c.Message, string(c.Status), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", asConstraintViolation(err))
	}
	return nil
}

var _ repository.ContactRepository = (*ContactRepository)(nil)
