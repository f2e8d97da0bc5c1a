// Package sqlite provides SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iecho/tooldir/internal/repository"
)

// escapeLikePattern escapes SQL LIKE wildcard characters (% and _) to prevent LIKE injection.
// Patterns built from it must use ESCAPE '\'.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// beginImmediateTx starts a transaction with retry logic for robustness.
// The IMMEDIATE locking is ensured by _txlock=immediate in the DSN.
func beginImmediateTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	const maxRetries = 5
	baseDelay := 50 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		tx, err := db.BeginTx(ctx, nil)
		if err == nil {
			return tx, nil
		}

		lastErr = err
		if !isSQLiteBusyError(err) {
			return nil, err
		}

		if attempt < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("failed to begin transaction after %d attempts: %w", maxRetries, lastErr)
}

// isSQLiteBusyError checks if an error is an SQLITE_BUSY or SQLITE_LOCKED error.
func isSQLiteBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "sqlite_busy")
}

// asConstraintViolation maps a UNIQUE or PRIMARY KEY failure to
// *repository.ConstraintViolation. Other errors are returned unchanged.
func asConstraintViolation(err error) error {
	if err == nil {
		return nil
	}

	unique := false
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		unique = code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	} else {
		unique = strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	if !unique {
		return err
	}

	// "UNIQUE constraint failed: upvotes.tool_id, upvotes.fingerprint"
	constraint := ""
	if _, after, ok := strings.Cut(err.Error(), "constraint failed: "); ok {
		constraint = strings.TrimSuffix(strings.TrimSpace(after), ")")
		if i := strings.Index(constraint, " ("); i >= 0 {
			constraint = constraint[:i]
		}
	}
	return &repository.ConstraintViolation{Constraint: constraint, Err: err}
}

// encodeStrings stores a string slice as a JSON array (never null).
func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

func decodeStrings(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return values, nil
}

// timestampLayout is fixed-width so stored values sort lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp accepts RFC3339 (as written by this package) and SQLite's
// CURRENT_TIMESTAMP layout.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
