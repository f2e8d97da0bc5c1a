package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iecho/tooldir/internal/repository"
)

func TestUpvoteRepository_CreateAndExists(t *testing.T) {
	db := setupTestDB(t)
	tools := NewToolRepository(db)
	repo := NewUpvoteRepository(db)
	ctx := context.Background()
	seedTool(t, tools, "notion")

	exists, err := repo.Exists(ctx, "notion", "fp")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists = true before Create")
	}

	if err := repo.Create(ctx, "notion", "fp"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, _ = repo.Exists(ctx, "notion", "fp")
	if !exists {
		t.Error("Exists = false after Create")
	}

	err = repo.Create(ctx, "notion", "fp")
	if !errors.Is(err, repository.ErrConstraintViolation) {
		t.Fatalf("duplicate Create error = %v, want ConstraintViolation", err)
	}
	var cv *repository.ConstraintViolation
	if errors.As(err, &cv) && cv.Constraint == "" {
		t.Error("ConstraintViolation.Constraint is empty")
	}

	// Same fingerprint on a different tool is fine
	seedTool(t, tools, "figma")
	if err := repo.Create(ctx, "figma", "fp"); err != nil {
		t.Errorf("Create on second tool failed: %v", err)
	}
}

func TestUpvoteRepository_UnknownToolIsNotConstraintViolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUpvoteRepository(db)

	err := repo.Create(context.Background(), "missing", "fp")
	if err == nil {
		t.Fatal("Create for unknown tool succeeded, want foreign key error")
	}
	if errors.Is(err, repository.ErrConstraintViolation) {
		t.Error("foreign key failure reported as uniqueness violation")
	}
}

func TestUpvoteRepository_ConcurrentCreateSamePair(t *testing.T) {
	db := setupTestDB(t)
	seedTool(t, NewToolRepository(db), "notion")
	repo := NewUpvoteRepository(db)
	ctx := context.Background()

	const workers = 20
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		violations int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, "notion", "same-fp")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrConstraintViolation):
				violations++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if violations != workers-1 {
		t.Errorf("violations = %d, want %d", violations, workers-1)
	}
	if n, _ := repo.CountByTool(ctx, "notion"); n != 1 {
		t.Errorf("CountByTool = %d, want 1", n)
	}
}
