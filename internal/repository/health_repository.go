package repository

import "context"

// HealthRepository provides health check operations for the database.
type HealthRepository interface {
	// Ping performs a basic connectivity check to the database.
	Ping(ctx context.Context) error
}
