package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/iecho/tooldir/internal/catalog"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/server"
)

// shutdownTimeout is how long in-flight requests get to finish
const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting tooldir",
		"port", cfg.Port,
		"db_type", cfg.DBType,
		"rate_limit_store", cfg.RateLimitStore,
		"rate_limit_window", cfg.RateLimits.Window(),
	)

	repos, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Cleanup()

	if cfg.SeedFile != "" {
		if err := seedCatalog(ctx, cfg, repos); err != nil {
			return err
		}
	}

	limiter, closeStore, err := server.NewLimiter(cfg, repos, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	prometheus.MustRegister(metrics.NewCatalogCollector(repos.Tools))

	// Record start time for health checks
	startTime := time.Now()

	srv := server.NewHTTPServer(cfg, server.NewRouter(server.Deps{
		Config:    cfg,
		Repos:     repos,
		Limiter:   limiter,
		Logger:    logger,
		StartTime: startTime,
	}))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Sweep expired rate limit counters
	g.Go(func() error {
		return limiter.RunCleanup(gctx, cfg.CleanupInterval())
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			if err := srv.Close(); err != nil {
				slog.Error("server close failed", "error", err)
			}
			return err
		}
		slog.Info("server shutdown complete",
			"rate_limit_fallbacks", limiter.FallbackActivations(),
		)
		return nil
	})

	return g.Wait()
}

// seedCatalog syncs SEED_FILE into the tool table, keeping upvote counts
func seedCatalog(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
	loader := &catalog.Loader{}
	tools, err := loader.Load(ctx, cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed catalog: %w", err)
	}
	if _, err := catalog.Import(ctx, repos.Tools, tools, catalog.ModeSync, false); err != nil {
		return fmt.Errorf("failed to import seed catalog: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
