package sqlite

import (
	"context"
	"database/sql"

	"github.com/iecho/tooldir/internal/repository"
)

// HealthRepository implements health checks for SQLite databases.
type HealthRepository struct {
	db *sql.DB
}

// NewHealthRepository creates a new SQLite health repository.
func NewHealthRepository(db *sql.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// Ping runs a trivial query; PingContext alone doesn't touch the file.
func (r *HealthRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

var _ repository.HealthRepository = (*HealthRepository)(nil)
