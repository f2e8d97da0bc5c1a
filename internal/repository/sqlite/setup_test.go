package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/iecho/tooldir/internal/database"
	"github.com/iecho/tooldir/internal/models"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
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

func seedTool(t *testing.T, repo *ToolRepository, id string, mutate ...func(*models.Tool)) *models.Tool {
	t.Helper()

	tool := &models.Tool{
		ID:          id,
		Name:        "Tool " + id,
		Description: "Description of " + id,
		Categories:  []string{"productivity"},
		Tags:        []string{"notes"},
		URL:         "https://example.com/" + id,
		Audience:    []string{"students"},
		Tier:        models.TierFree,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, m := range mutate {
		m(tool)
	}

	if err := repo.Upsert(context.Background(), tool, false); err != nil {
		t.Fatalf("Upsert(%s) failed: %v", id, err)
	}
	return tool
}
