package edgecases

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/repository/sqlite"
	"github.com/iecho/tooldir/internal/server"
	"github.com/iecho/tooldir/internal/testutil"
)

// newRouter serves repos through the full middleware stack.
func newRouter(t *testing.T, repos *repository.Repositories, limiter *ratelimit.Limiter) http.Handler {
	t.Helper()

	return newRouterWithConfig(testutil.SetupTestConfig(t), repos, limiter)
}

func newRouterWithConfig(cfg *config.Config, repos *repository.Repositories, limiter *ratelimit.Limiter) http.Handler {
	if limiter == nil {
		limiter = ratelimit.New(nil, ratelimit.NewFallbackStore(), ratelimit.Options{})
	}
	return server.NewRouter(server.Deps{
		Config:  cfg,
		Repos:   repos,
		Limiter: limiter,
	})
}

func seededSQLite(t *testing.T) *repository.Repositories {
	t.Helper()

	repos, err := sqlite.NewRepositories(nil, testutil.SetupTestDB(t))
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	testutil.SeedTools(t, repos.Tools, testutil.SampleTools()...)
	return repos
}

func request(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "edgecase-test/1.0")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v (body %q)", err, rr.Body.String())
	}
	return resp
}
