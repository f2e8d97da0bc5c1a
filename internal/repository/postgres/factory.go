package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/repository"
)

// NewRepositories creates all PostgreSQL repository implementations.
// This factory creates a connection pool, runs migrations when enabled and
// builds every repository on top of the pool.
func NewRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, error) {
	if cfg == nil || cfg.PostgreSQL == nil {
		return nil, fmt.Errorf("PostgreSQL configuration is nil")
	}
	pgCfg := cfg.PostgreSQL

	pool, err := NewPool(ctx, buildConnectionString(pgCfg), int32(pgCfg.MaxConns))
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	if pgCfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
		}
	}

	repos, err := NewRepositoriesWithPool(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	repos.Cleanup = pool.Close
	return repos, nil
}

// NewRepositoriesWithPool creates all PostgreSQL repository implementations using an existing pool.
// Note: The caller is responsible for closing the pool; Cleanup will be nil.
func NewRepositoriesWithPool(pool *Pool) (*repository.Repositories, error) {
	if pool == nil {
		return nil, repository.ErrNilDatabase
	}

	return &repository.Repositories{
		Tools:             NewToolRepository(pool),
		Upvotes:           NewUpvoteRepository(pool),
		Collections:       NewCollectionRepository(pool),
		SharedCollections: NewSharedCollectionRepository(pool),
		Contacts:          NewContactRepository(pool),
		RateLimits:        NewRateLimitRepository(pool),
		Health:            NewHealthRepository(pool),
		DatabaseType:      config.DBTypePostgres,
	}, nil
}

// buildConnectionString constructs a PostgreSQL connection string from config.
// Credentials are URL-encoded to handle special characters safely.
func buildConnectionString(cfg *config.PostgreSQLConfig) string {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.PathEscape(cfg.User),
		url.PathEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.PathEscape(cfg.Database),
	)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	connStr += "?sslmode=" + url.QueryEscape(sslMode)

	if cfg.Options != "" {
		connStr += "&" + cfg.Options
	}

	return connStr
}
