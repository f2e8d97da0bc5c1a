package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository/mock"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t)

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tools").Scan(&count); err != nil {
		t.Fatalf("tools table missing: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestSetupTestConfig(t *testing.T) {
	cfg := SetupTestConfig(t)

	if cfg.DBPath != ":memory:" {
		t.Errorf("DBPath = %s, want :memory:", cfg.DBPath)
	}
	if cfg.RateLimitStore != "memory" {
		t.Errorf("RateLimitStore = %s, want memory", cfg.RateLimitStore)
	}
}

func TestSampleTools(t *testing.T) {
	tools := SampleTools()

	seen := map[models.Tier]bool{}
	ids := map[string]bool{}
	for _, tool := range tools {
		if ids[tool.ID] {
			t.Errorf("duplicate id %s", tool.ID)
		}
		ids[tool.ID] = true
		seen[tool.Tier] = true
		if !tool.Tier.Valid() {
			t.Errorf("%s has invalid tier %q", tool.ID, tool.Tier)
		}
	}
	if len(seen) != 3 {
		t.Errorf("tiers covered = %d, want 3", len(seen))
	}

	if SampleTool("figma") == nil || SampleTool("nope") != nil {
		t.Error("SampleTool lookup mismatch")
	}
}

func TestSeedTools(t *testing.T) {
	repo := mock.NewToolRepository()
	SeedTools(t, repo, SampleTools()...)

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Tools != int64(len(SampleTools())) {
		t.Errorf("Tools = %d, want %d", stats.Tools, len(SampleTools()))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Body = JSONBody(t, map[string]string{"toolId": "notion"})

	var got map[string]string
	DecodeJSON(t, rr, &got)
	if got["toolId"] != "notion" {
		t.Errorf("toolId = %q, want notion", got["toolId"])
	}
}
