package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource reports catalog totals. repository.ToolRepository satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// CatalogCollector queries catalog totals on each scrape
type CatalogCollector struct {
	source  StatsSource
	timeout time.Duration

	toolsCount   *prometheus.Desc
	upvotesCount *prometheus.Desc
}

// NewCatalogCollector creates a new collector
func NewCatalogCollector(source StatsSource) *CatalogCollector {
	return &CatalogCollector{
		source:  source,
		timeout: 5 * time.Second,
		toolsCount: prometheus.NewDesc(
			"tooldir_tools_count",
			"Number of tools in the catalog",
			nil, nil,
		),
		upvotesCount: prometheus.NewDesc(
			"tooldir_upvotes_count",
			"Sum of upvote counters across all tools",
			nil, nil,
		),
	}
}

// Describe sends metric descriptors to Prometheus
func (c *CatalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.toolsCount
	ch <- c.upvotesCount
}

// Collect fetches current totals and sends them to Prometheus
func (c *CatalogCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.source.Stats(ctx)
	if err != nil {
		slog.Error("failed to query catalog metrics", "error", err)
		// Send zero values on error to avoid scrape failure
		stats = &models.CatalogStats{}
	}

	ch <- prometheus.MustNewConstMetric(c.toolsCount, prometheus.GaugeValue, float64(stats.Tools))
	ch <- prometheus.MustNewConstMetric(c.upvotesCount, prometheus.GaugeValue, float64(stats.Upvotes))
}
