package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/database"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// SetupTestDB creates an in-memory SQLite database with the full schema.
// The database is automatically closed when the test completes
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupTestConfig loads the default configuration with host environment
// variables that Load reads cleared, so the result is the same on every machine.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	for _, key := range []string{"DB_TYPE", "REDIS_URL", "RATE_LIMIT_STORE", "PUBLIC_URL", "SEED_FILE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cfg.DBPath = ":memory:"
	cfg.PublicURL = "http://tools.test"

	return cfg
}

// SeedTools upserts tools into repo, failing the test on error.
func SeedTools(t *testing.T, repo repository.ToolRepository, tools ...*models.Tool) {
	t.Helper()

	for _, tool := range tools {
		if err := repo.Upsert(context.Background(), tool, false); err != nil {
			t.Fatalf("failed to seed tool %s: %v", tool.ID, err)
		}
	}
}

// JSONBody encodes v for use as a request body.
func JSONBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return buf
}

// DecodeJSON decodes the recorder body into v.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

// AssertStatusCode checks that the HTTP response status code matches expected
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int) {
	t.Helper()

	if rr.Code != wantStatus {
		t.Errorf("status code = %d, want %d\nBody: %s", rr.Code, wantStatus, rr.Body.String())
	}
}

// AssertHeader checks a response header value
func AssertHeader(t *testing.T, rr *httptest.ResponseRecorder, key, want string) {
	t.Helper()

	if got := rr.Header().Get(key); got != want {
		t.Errorf("header %s = %q, want %q", key, got, want)
	}
}

// AssertContains fails the test if haystack doesn't contain needle
func AssertContains(t *testing.T, haystack, needle string) {
	t.Helper()

	if !bytes.Contains([]byte(haystack), []byte(needle)) {
		t.Errorf("expected %q to contain %q", haystack, needle)
	}
}
