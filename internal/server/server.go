// Package server wires repositories, services, handlers and middleware into
// the HTTP router.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iecho/tooldir/internal/collection"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/handlers"
	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/middleware"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/upvote"
)

// Deps are the long-lived components the router is built from.
type Deps struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Limiter   *ratelimit.Limiter
	Logger    *slog.Logger
	StartTime time.Time
}

// NewRouter builds the full HTTP surface.
//
// Middleware order: RequestID -> Recovery -> Logging -> Security -> Metrics -> handlers
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.StartTime.IsZero() {
		d.StartTime = time.Now()
	}

	guard := handlers.NewRateGuard(d.Limiter, d.Config.RateLimits)
	collections := collection.NewService(d.Repos, d.Logger)
	ledger := upvote.NewLedger(d.Repos.Tools, d.Repos.Upvotes, d.Logger)
	trust := middleware.NewProxyTrust(d.Config.TrustProxyHeaders, d.Config.TrustedProxyIPs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware(trust))
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(metrics.Middleware)

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	r.Get("/health", handlers.HealthHandler(d.Repos, d.Limiter, d.StartTime))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", handlers.ListToolsHandler(d.Repos.Tools))
		r.Get("/tools/search", handlers.SearchToolsHandler(d.Repos.Tools))
		r.Post("/tools/recommend", handlers.RecommendHandler(guard))
		r.Get("/tools/{id}", handlers.GetToolHandler(d.Repos.Tools))

		r.Post("/upvote", handlers.UpvoteHandler(d.Repos.Tools, ledger, guard))

		r.Get("/collections", handlers.GetCollectionHandler(collections))
		r.Put("/collections", handlers.SaveCollectionHandler(collections, guard))
		r.Post("/collections/share", handlers.ShareCollectionHandler(collections, guard, d.Config.PublicURL))
		r.Get("/collections/share/{id}", handlers.GetSharedCollectionHandler(collections))

		r.Post("/contact", handlers.ContactHandler(d.Repos.Contacts, guard))
	})

	return r
}

// NewHTTPServer applies the configured timeouts to an http.Server for handler.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
