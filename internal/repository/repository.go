// Package repository defines interfaces for data access operations.
// Backends (SQLite, PostgreSQL) implement these so handlers and services
// never see database-specific SQL.
//
// The core relies on four storage primitives: read-by-key, insert under a
// uniqueness constraint, atomic increment, and upsert on a unique index.
// Each backend reports a rejected unique insert as *ConstraintViolation.
package repository

import (
	"errors"
	"fmt"
)

// Common errors returned by repository operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConstraintViolation is matched by every *ConstraintViolation.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNilDatabase is returned when a nil database connection is provided.
	ErrNilDatabase = errors.New("nil database connection")
)

// ConstraintViolation is returned when a write is rejected by a uniqueness
// constraint. Constraint names the index or constraint when the backend
// reports it.
type ConstraintViolation struct {
	Constraint string
	Err        error
}

func (e *ConstraintViolation) Error() string {
	if e.Constraint == "" {
		return "constraint violation"
	}
	return fmt.Sprintf("constraint violation: %s", e.Constraint)
}

// Is makes errors.Is(err, ErrConstraintViolation) match.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// IsConstraintViolation reports whether err is (or wraps) a uniqueness rejection.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// DefaultPageLimit is the page size used when a query leaves it unset.
const DefaultPageLimit = 20

// Repositories holds all repository implementations.
// This struct provides a single point of access to all data access layers.
type Repositories struct {
	Tools             ToolRepository
	Upvotes           UpvoteRepository
	Collections       CollectionRepository
	SharedCollections SharedCollectionRepository
	Contacts          ContactRepository
	RateLimits        RateLimitRepository
	Health            HealthRepository

	// DatabaseType is "sqlite" or "postgres".
	DatabaseType string

	// Cleanup releases the underlying connection(s). Safe to call once.
	Cleanup func()
}
