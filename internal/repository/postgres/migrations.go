package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration represents a database migration.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
}

// migrations contains all PostgreSQL schema migrations in order.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "001_catalog",
		Description: "Tools and upvotes",
		SQL: `
CREATE TABLE IF NOT EXISTS tools (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    categories TEXT[] NOT NULL DEFAULT '{}',
    tags TEXT[] NOT NULL DEFAULT '{}',
    url TEXT NOT NULL,
    icon TEXT,
    audience TEXT[] NOT NULL DEFAULT '{}',
    tier TEXT NOT NULL CHECK (tier IN ('free', 'freemium', 'paid')),
    is_popular BOOLEAN NOT NULL DEFAULT FALSE,
    upvotes BIGINT NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tools_upvotes ON tools(upvotes DESC);
CREATE INDEX IF NOT EXISTS idx_tools_created_at ON tools(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tools_tier ON tools(tier);

CREATE TABLE IF NOT EXISTS upvotes (
    id BIGSERIAL PRIMARY KEY,
    tool_id TEXT NOT NULL REFERENCES tools(id) ON DELETE CASCADE,
    fingerprint TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT upvotes_tool_fingerprint_key UNIQUE (tool_id, fingerprint)
);
`,
	},
	{
		Version:     2,
		Name:        "002_collections",
		Description: "Personal and shared collections",
		SQL: `
CREATE TABLE IF NOT EXISTS collections (
    id BIGSERIAL PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    tool_ids TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT collections_fingerprint_key UNIQUE (fingerprint)
);

CREATE TABLE IF NOT EXISTS shared_collections (
    id TEXT PRIMARY KEY,
    tool_ids TEXT[] NOT NULL,
    tool_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT shared_collections_tool_hash_key UNIQUE (tool_hash)
);
`,
	},
	{
		Version:     3,
		Name:        "003_contacts",
		Description: "Contact form submissions",
		SQL: `
CREATE TABLE IF NOT EXISTS contacts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'read', 'archived')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
`,
	},
	{
		Version:     4,
		Name:        "004_rate_limits",
		Description: "Shared rate limit counters (window_end in unix ms)",
		SQL: `
CREATE TABLE IF NOT EXISTS rate_limits (
    key TEXT PRIMARY KEY,
    request_count BIGINT NOT NULL,
    window_end BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rate_limits_window_end ON rate_limits(window_end);
`,
	},
}

// RunMigrations applies all pending database migrations to PostgreSQL.
func RunMigrations(ctx context.Context, pool *Pool) error {
	slog.Info("running PostgreSQL database migrations")

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	appliedMap, err := appliedMigrations(ctx, pool)
	if err != nil {
		return err
	}

	pendingCount := 0
	for _, m := range migrations {
		if appliedMap[m.Name] {
			slog.Debug("migration already applied", "migration", m.Name)
			continue
		}

		slog.Info("applying migration", "migration", m.Name, "description", m.Description)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.Name, err)
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to execute migration %s: %w", m.Name, err)
		}

		if _, err := tx.Exec(ctx, "INSERT INTO migrations (name) VALUES ($1)", m.Name); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Name, err)
		}

		slog.Info("migration applied successfully", "migration", m.Name)
		pendingCount++
	}

	if pendingCount == 0 {
		slog.Info("no pending PostgreSQL migrations")
	} else {
		slog.Info("PostgreSQL migrations complete", "applied", pendingCount)
	}

	return nil
}

func appliedMigrations(ctx context.Context, pool *Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, "SELECT name FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration name: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migrations: %w", err)
	}
	return applied, nil
}

// MigrationStatus represents the status of a migration.
type MigrationStatus struct {
	Version     int
	Name        string
	Description string
	Applied     bool
}

// GetMigrationStatus returns the status of all migrations.
func GetMigrationStatus(ctx context.Context, pool *Pool) ([]MigrationStatus, error) {
	applied, err := appliedMigrations(ctx, pool)
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		status = append(status, MigrationStatus{
			Version:     m.Version,
			Name:        m.Name,
			Description: m.Description,
			Applied:     applied[m.Name],
		})
	}
	return status, nil
}
