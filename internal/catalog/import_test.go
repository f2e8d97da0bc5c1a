package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/repository/sqlite"
	"github.com/iecho/tooldir/internal/testutil"
)

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := sqlite.NewRepositories(nil, testutil.SetupTestDB(t))
	require.NoError(t, err)
	testutil.SeedTools(t, repos.Tools, testutil.SampleTools()...)
	return repos
}

func TestImport_SyncPreservesUpvotes(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)

	tools, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	res, err := Import(ctx, repos.Tools, tools, ModeSync, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Upserted)
	assert.Zero(t, res.Deleted)

	notion, err := repos.Tools.GetByID(ctx, "notion")
	require.NoError(t, err)
	assert.Equal(t, "All-in-one workspace", notion.Description, "catalog fields updated")
	assert.Equal(t, int64(12), notion.Upvotes, "upvotes kept")

	// Tools missing from the document are left alone in sync mode.
	_, err = repos.Tools.GetByID(ctx, "figma")
	assert.NoError(t, err)
}

func TestImport_FreshReplacesCatalog(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Upvotes.Create(ctx, "notion", "fp-1"))

	tools, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	res, err := Import(ctx, repos.Tools, tools, ModeFresh, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Deleted)
	assert.Equal(t, 3, res.Upserted)

	_, err = repos.Tools.GetByID(ctx, "figma")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	notion, err := repos.Tools.GetByID(ctx, "notion")
	require.NoError(t, err)
	assert.Zero(t, notion.Upvotes)

	count, err := repos.Upvotes.CountByTool(ctx, "notion")
	require.NoError(t, err)
	assert.Zero(t, count, "upvotes removed with their tools")
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)

	tools, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	res, err := Import(ctx, repos.Tools, tools, ModeFresh, true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 3, res.Tools)
	assert.Zero(t, res.Upserted)

	_, err = repos.Tools.GetByID(ctx, "figma")
	assert.NoError(t, err)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"sync", "fresh"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("merge")
	assert.Error(t, err)
}
