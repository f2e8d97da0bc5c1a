package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iecho/tooldir/internal/collection"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/repository/sqlite"
	"github.com/iecho/tooldir/internal/testutil"
	"github.com/iecho/tooldir/internal/upvote"
)

const testPublicURL = "http://tools.test"

type testEnv struct {
	repos   *repository.Repositories
	limits  *config.RateLimits
	limiter *ratelimit.Limiter
	router  http.Handler
}

// setupHandlerTest builds the API routes over a seeded in-memory database and
// a process-local rate limiter.
func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos, err := sqlite.NewRepositories(nil, db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	testutil.SeedTools(t, repos.Tools, testutil.SampleTools()...)

	env := &testEnv{
		repos: repos,
		limits: config.NewRateLimits(time.Hour, map[string]int{
			config.ActionUpvote:      10,
			config.ActionCollections: 20,
			config.ActionShare:       30,
			config.ActionContact:     5,
			config.ActionRecommend:   5,
		}),
		limiter: ratelimit.New(nil, ratelimit.NewFallbackStore(), ratelimit.Options{}),
	}
	env.router = env.routes(repos)
	return env
}

func (e *testEnv) routes(repos *repository.Repositories) http.Handler {
	guard := NewRateGuard(e.limiter, e.limits)
	svc := collection.NewService(repos, nil)
	ledger := upvote.NewLedger(repos.Tools, repos.Upvotes, nil)

	r := chi.NewRouter()
	r.Get("/health", HealthHandler(repos, e.limiter, time.Now()))
	r.Get("/api/tools", ListToolsHandler(repos.Tools))
	r.Get("/api/tools/search", SearchToolsHandler(repos.Tools))
	r.Post("/api/tools/recommend", RecommendHandler(guard))
	r.Get("/api/tools/{id}", GetToolHandler(repos.Tools))
	r.Post("/api/upvote", UpvoteHandler(repos.Tools, ledger, guard))
	r.Get("/api/collections", GetCollectionHandler(svc))
	r.Put("/api/collections", SaveCollectionHandler(svc, guard))
	r.Post("/api/collections/share", ShareCollectionHandler(svc, guard, testPublicURL))
	r.Get("/api/collections/share/{id}", GetSharedCollectionHandler(svc))
	r.Post("/api/contact", ContactHandler(repos.Contacts, guard))
	return r
}

// do sends a request with a fixed client identity so every call shares one fingerprint
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewBufferString(b))
	default:
		req = httptest.NewRequest(method, path, testutil.JSONBody(t, b))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handlers-test/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}
