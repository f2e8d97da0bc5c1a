package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counter metrics (monotonically increasing)
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RateLimitDecisionsTotal counts limiter outcomes by action (upvote, share...) and result (allowed, rejected)
	RateLimitDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_ratelimit_decisions_total",
			Help: "Total number of rate limit decisions",
		},
		[]string{"action", "result"},
	)

	// RateLimitFallbackTotal counts admits served by the in-process store.
	// reason is "error" when the shared store call failed and "breaker_open"
	// when it was skipped.
	RateLimitFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_ratelimit_fallback_total",
			Help: "Total number of rate limit checks served by the in-process fallback",
		},
		[]string{"reason"},
	)

	// UpvotesTotal counts upvote attempts by result (added, duplicate, not_found)
	UpvotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_upvotes_total",
			Help: "Total number of upvote attempts",
		},
		[]string{"result"},
	)

	// SharedCollectionsTotal counts share requests by result (created, cached, reordered)
	SharedCollectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_shared_collections_total",
			Help: "Total number of collection share requests",
		},
		[]string{"result"},
	)

	// ErrorsTotal counts application errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tooldir_errors_total",
			Help: "Total number of application errors",
		},
		[]string{"type"},
	)
)

// Histogram metrics (distributions)
var (
	// HTTPRequestDuration tracks HTTP request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tooldir_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// RateLimitStoreDuration tracks shared counter store round trips by outcome (ok, error)
	RateLimitStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tooldir_ratelimit_store_duration_seconds",
			Help:    "Shared rate limit store latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"outcome"},
	)
)

// Gauge metrics
var (
	// RateLimitStoreUp is 1 while the shared counter store answers and 0 during an outage
	RateLimitStoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tooldir_ratelimit_store_up",
			Help: "Whether the shared rate limit store is reachable (1) or the fallback is active (0)",
		},
	)

	// HealthStatus is a gauge representing current health status
	// Values: 0 = unhealthy, 1 = degraded, 2 = healthy
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tooldir_health_status",
			Help: "Current health status (0=unhealthy, 1=degraded, 2=healthy)",
		},
	)
)
