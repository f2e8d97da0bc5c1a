package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository/mock"
	"github.com/iecho/tooldir/internal/repository/sqlite"
	"github.com/iecho/tooldir/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_DuplicateSetReused(t *testing.T) {
	repo := mock.NewSharedCollectionRepository()
	sharer := NewSharer(repo, nil)
	ctx := context.Background()

	first, cached, err := sharer.GetOrCreate(ctx, []string{"b", "a", "a"})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, []string{"b", "a"}, first.ToolIDs)

	second, cached, err := sharer.GetOrCreate(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"a", "b"}, second.ToolIDs, "stored order follows the latest request")
	assert.Equal(t, 1, repo.UpdateCalls)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored.ToolIDs)
}

func TestGetOrCreate_SameOrderNoUpdate(t *testing.T) {
	repo := mock.NewSharedCollectionRepository()
	sharer := NewSharer(repo, nil)
	ctx := context.Background()

	first, _, err := sharer.GetOrCreate(ctx, []string{"x", "y", "z"})
	require.NoError(t, err)
	second, cached, err := sharer.GetOrCreate(ctx, []string{"x", "y", "z", "x"})
	require.NoError(t, err)

	assert.True(t, cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Zero(t, repo.UpdateCalls)
}

func TestGetOrCreate_PermutationCached(t *testing.T) {
	sharer := NewSharer(mock.NewSharedCollectionRepository(), nil)
	ctx := context.Background()

	first, _, err := sharer.GetOrCreate(ctx, []string{"x", "y", "z"})
	require.NoError(t, err)
	second, cached, err := sharer.GetOrCreate(ctx, []string{"z", "x", "y", "x"})
	require.NoError(t, err)

	assert.True(t, cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"z", "x", "y"}, second.ToolIDs)
}

func TestGetOrCreate_EmptySet(t *testing.T) {
	repo := mock.NewSharedCollectionRepository()
	repo.GetByHashError = errors.New("storage should not be touched")
	sharer := NewSharer(repo, nil)

	_, _, err := sharer.GetOrCreate(context.Background(), []string{"", "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetOrCreate_ConstraintRace(t *testing.T) {
	repo := mock.NewSharedCollectionRepository()
	sharer := NewSharer(repo, nil)
	ids := []string{"a", "b"}

	// A concurrent writer stores the same set (in another order) between our
	// lookup and insert.
	repo.OnCreate = func(ctx context.Context, sc *models.SharedCollection) error {
		repo.Insert(&models.SharedCollection{ID: "winner", ToolIDs: []string{"b", "a"}, ToolHash: sc.ToolHash})
		return nil
	}

	sc, cached, err := sharer.GetOrCreate(context.Background(), ids)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "winner", sc.ID)
	assert.Equal(t, ids, sc.ToolIDs)
}

func TestGetOrCreate_StorageError(t *testing.T) {
	boom := errors.New("connection reset")

	repo := mock.NewSharedCollectionRepository()
	repo.CreateError = boom
	_, _, err := NewSharer(repo, nil).GetOrCreate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)

	repo = mock.NewSharedCollectionRepository()
	repo.GetByHashError = boom
	_, _, err = NewSharer(repo, nil).GetOrCreate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
}

func TestGetOrCreate_ConcurrentSQLite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos, err := sqlite.NewRepositories(nil, db)
	require.NoError(t, err)
	sharer := NewSharer(repos.SharedCollections, nil)

	const workers = 10
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			order := []string{"x", "y", "z"}
			if n%2 == 1 {
				order = []string{"z", "y", "x"}
			}
			sc, _, err := sharer.GetOrCreate(context.Background(), order)
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			ids <- sc.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	distinct := map[string]bool{}
	for id := range ids {
		distinct[id] = true
	}
	assert.Len(t, distinct, 1, fmt.Sprintf("expected one shared collection, got %v", distinct))
}
