// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iecho/tooldir/internal/repository"
)

// PostgreSQL error codes
const (
	// UniqueViolation is the PostgreSQL error code for unique constraint violations.
	UniqueViolation = "23505"
	// ForeignKeyViolation is the PostgreSQL error code for foreign key violations.
	ForeignKeyViolation = "23503"
	// SerializationFailure is the PostgreSQL error code for serialization failures.
	SerializationFailure = "40001"
	// DeadlockDetected is the PostgreSQL error code for deadlock detection.
	DeadlockDetected = "40P01"
)

// defaultRetries is how often a transient failure (serialization, deadlock) is retried.
const defaultRetries = 3

// Pool wraps pgxpool.Pool to provide a consistent interface.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, connString string, maxConns int32) (*Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if maxConns > 0 {
		config.MaxConns = maxConns
	} else {
		config.MaxConns = 25
	}
	if config.MaxConns < 5 {
		config.MinConns = config.MaxConns
	} else {
		config.MinConns = 5
	}
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// escapeLikePattern escapes SQL LIKE wildcard characters (% and _) to prevent LIKE injection.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// isRetryableError checks if an error is a transient PostgreSQL error worth retrying.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailure, DeadlockDetected:
			return true
		}
	}
	return false
}

// asConstraintViolation maps SQLSTATE 23505 to *repository.ConstraintViolation,
// carrying the constraint name PostgreSQL reports. Other errors pass through.
func asConstraintViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == UniqueViolation {
		return &repository.ConstraintViolation{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// withRetry executes a function with exponential backoff retry logic for transient errors.
func withRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return zero, err
		}

		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// withRetryNoReturn is withRetry for functions that don't return a value.
func withRetryNoReturn(ctx context.Context, maxRetries int, fn func() error) error {
	_, err := withRetry(ctx, maxRetries, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// TxOptions returns the default transaction options for PostgreSQL.
func TxOptions() pgx.TxOptions {
	return pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}
}

// nonNil keeps TEXT[] columns NOT NULL-safe.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// argList numbers positional parameters while a query is assembled.
type argList struct {
	values []any
}

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}
