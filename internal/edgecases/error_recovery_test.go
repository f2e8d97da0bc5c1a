package edgecases

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository/mock"
	"github.com/iecho/tooldir/internal/testutil"
)

var errDiskIO = errors.New("disk I/O error: /var/lib/tooldir/tooldir.db")

func seededMock(t *testing.T) *mock.Repositories {
	t.Helper()
	m := mock.NewRepositories()
	testutil.SeedTools(t, m.Tools, testutil.SampleTools()...)
	return m
}

// TestRecoveryFromDatabaseError checks storage failures become a generic 500
// without leaking the underlying error text.
func TestRecoveryFromDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		inject func(m *mock.Repositories)
		method string
		path   string
		body   interface{}
	}{
		{"list", func(m *mock.Repositories) { m.Tools.ListError = errDiskIO }, "GET", "/api/tools", nil},
		{"search", func(m *mock.Repositories) { m.Tools.ListError = errDiskIO }, "GET", "/api/tools/search?q=notion", nil},
		{"tool detail", func(m *mock.Repositories) { m.Tools.GetByIDError = errDiskIO }, "GET", "/api/tools/notion", nil},
		{"upvote exists", func(m *mock.Repositories) { m.Upvotes.ExistsError = errDiskIO }, "POST", "/api/upvote", map[string]string{"toolId": "notion"}},
		{"upvote increment", func(m *mock.Repositories) { m.Tools.IncrementUpvotesError = errDiskIO }, "POST", "/api/upvote", map[string]string{"toolId": "notion"}},
		{"collection read", func(m *mock.Repositories) { m.Collections.GetError = errDiskIO }, "GET", "/api/collections", nil},
		{"collection save", func(m *mock.Repositories) { m.Collections.SaveError = errDiskIO }, "PUT", "/api/collections", map[string][]string{"toolIds": {"notion"}}},
		{"share lookup", func(m *mock.Repositories) { m.SharedCollections.GetByHashError = errDiskIO }, "POST", "/api/collections/share", map[string][]string{"toolIds": {"notion"}}},
		{"share create", func(m *mock.Repositories) { m.SharedCollections.CreateError = errDiskIO }, "POST", "/api/collections/share", map[string][]string{"toolIds": {"notion"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seededMock(t)
			tt.inject(m)
			router := newRouter(t, m.AsRepositories(), nil)

			var body []byte
			if tt.body != nil {
				body = mustJSON(t, tt.body)
			}
			rr := request(t, router, tt.method, tt.path, body)

			if rr.Code != 500 {
				t.Fatalf("status = %d, want 500 (body %s)", rr.Code, rr.Body.String())
			}
			resp := decodeError(t, rr)
			if resp.Code != "INTERNAL_ERROR" {
				t.Errorf("code = %q, want INTERNAL_ERROR", resp.Code)
			}
			if strings.Contains(resp.Error, "disk") {
				t.Errorf("error message leaks storage detail: %q", resp.Error)
			}
		})
	}
}

// TestRecoveryFromUnreachableDatabase checks the health endpoint reports the
// outage and recovers once the database answers again.
func TestRecoveryFromUnreachableDatabase(t *testing.T) {
	m := seededMock(t)
	router := newRouter(t, m.AsRepositories(), nil)

	m.Health.PingError = errDiskIO
	if rr := request(t, router, "GET", "/health", nil); rr.Code != 503 {
		t.Errorf("during outage: status = %d, want 503", rr.Code)
	}

	m.Health.PingError = nil
	if rr := request(t, router, "GET", "/health", nil); rr.Code != 200 {
		t.Errorf("after outage: status = %d, want 200", rr.Code)
	}
}

// downStore fails every increment, like an unreachable Redis.
type downStore struct {
	calls atomic.Int64
}

func (s *downStore) Increment(context.Context, string, time.Duration) (int64, time.Duration, error) {
	s.calls.Add(1)
	return 0, 0, errors.New("dial tcp 10.0.0.9:6379: connect: connection refused")
}

func (s *downStore) Name() string { return "redis" }

// TestRecoveryFromCounterStoreOutage checks requests keep being served and
// limited from process memory while the shared store is down.
func TestRecoveryFromCounterStoreOutage(t *testing.T) {
	store := &downStore{}
	limiter := ratelimit.New(store, ratelimit.NewFallbackStore(), ratelimit.Options{
		Breaker: ratelimit.NewCircuitBreaker(ratelimit.CircuitOptions{FailureThreshold: 2, OpenDuration: time.Minute}),
	})

	m := seededMock(t)
	cfg := testutil.SetupTestConfig(t)
	if err := cfg.RateLimits.SetLimit(config.ActionUpvote, 2); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}
	router := newRouterWithConfig(cfg, m.AsRepositories(), limiter)

	codes := make([]int, 0, 3)
	for _, id := range []string{"notion", "figma", "linear"} {
		rr := request(t, router, "POST", "/api/upvote", mustJSON(t, map[string]string{"toolId": id}))
		codes = append(codes, rr.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != 429 {
		t.Errorf("statuses = %v, want [200 200 429]", codes)
	}

	if store.calls.Load() != 2 {
		t.Errorf("store calls = %d, want 2 before the breaker opened", store.calls.Load())
	}
	if limiter.Mode() != ratelimit.ModeFallback {
		t.Errorf("Mode = %q, want %q", limiter.Mode(), ratelimit.ModeFallback)
	}

	rr := request(t, router, "GET", "/health", nil)
	if rr.Code != 200 {
		t.Errorf("health during store outage: status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "degraded") {
		t.Errorf("health body = %s, want degraded", rr.Body.String())
	}
}
