package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/database"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/repository/postgres"
	"github.com/iecho/tooldir/internal/repository/sqlite"
)

// OpenRepositories connects to the configured database backend.
func OpenRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, error) {
	switch cfg.DBType {
	case config.DBTypePostgres:
		repos, err := postgres.NewRepositories(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("database initialized",
			"type", config.DBTypePostgres,
			"host", cfg.PostgreSQL.Host,
			"database", cfg.PostgreSQL.Database,
		)
		return repos, nil

	default:
		db, err := database.Initialize(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := sqlite.NewRepositories(cfg, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("database initialized", "type", config.DBTypeSQLite, "path", cfg.DBPath)
		return repos, nil
	}
}

// NewLimiter builds the rate limiter for the configured counter store. The
// returned close function releases the Redis client, if any.
func NewLimiter(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*ratelimit.Limiter, func() error, error) {
	noop := func() error { return nil }
	opts := ratelimit.Options{
		StoreTimeout: cfg.StoreTimeout(),
		Breaker: ratelimit.NewCircuitBreaker(ratelimit.CircuitOptions{
			FailureThreshold: int64(cfg.RateLimitBreakerThreshold),
			OpenDuration:     cfg.BreakerCooldown(),
		}),
		Logger: logger,
	}

	switch cfg.RateLimitStore {
	case config.RateLimitStoreRedis:
		client, err := ratelimit.NewRedisClient(cfg.RedisURL, cfg.StoreTimeout())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create redis client: %w", err)
		}
		logRedisTarget(client)
		return ratelimit.New(ratelimit.NewRedisStore(client), ratelimit.NewFallbackStore(), opts), client.Close, nil

	case config.RateLimitStoreDatabase:
		slog.Info("rate limit store configured", "store", "database", "database_type", repos.DatabaseType)
		return ratelimit.New(ratelimit.NewDatabaseStore(repos.RateLimits), ratelimit.NewFallbackStore(), opts), noop, nil

	default:
		slog.Info("rate limit store configured", "store", "memory")
		return ratelimit.New(nil, ratelimit.NewFallbackStore(), opts), noop, nil
	}
}

func logRedisTarget(client *redis.Client) {
	o := client.Options()
	slog.Info("rate limit store configured",
		"store", "redis",
		"addr", o.Addr,
		"db", o.DB,
	)
}
