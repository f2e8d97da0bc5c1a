package benchmarks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iecho/tooldir/internal/collection"
	"github.com/iecho/tooldir/internal/ratelimit"
	"github.com/iecho/tooldir/internal/repository/sqlite"
	"github.com/iecho/tooldir/internal/testutil"
	"github.com/iecho/tooldir/internal/upvote"
)

// TestLoad_RateLimiterUnderHighLoad fires 200 concurrent admits per store and
// checks exactly the limit gets through.
func TestLoad_RateLimiterUnderHighLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping load test in short mode")
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repos, err := sqlite.NewRepositories(nil, testutil.SetupTestDB(t))
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	stores := map[string]ratelimit.CounterStore{
		"redis":    ratelimit.NewRedisStore(client),
		"database": ratelimit.NewDatabaseStore(repos.RateLimits),
		"memory":   nil,
	}

	const limit, attempts = 50, 200
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			limiter := ratelimit.New(store, ratelimit.NewFallbackStore(), ratelimit.Options{StoreTimeout: 5 * time.Second})
			ctx := context.Background()

			var allowed, rejected int64
			var wg sync.WaitGroup
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if limiter.Admit(ctx, "upvote:load-"+name, limit, time.Hour).Allowed {
						atomic.AddInt64(&allowed, 1)
					} else {
						atomic.AddInt64(&rejected, 1)
					}
				}()
			}
			wg.Wait()

			t.Logf("%s: allowed=%d rejected=%d fallback=%d", name, allowed, rejected, limiter.FallbackActivations())

			if limiter.FallbackActivations() != 0 {
				t.Fatalf("store fell back %d times, results would not reflect %s", limiter.FallbackActivations(), name)
			}
			if allowed != limit {
				t.Errorf("allowed = %d, want exactly %d", allowed, limit)
			}
			if rejected != attempts-limit {
				t.Errorf("rejected = %d, want %d", rejected, attempts-limit)
			}
		})
	}
}

// TestLoad_ConcurrentUpvotes has 20 callers each upvote every tool 5 times at once.
func TestLoad_ConcurrentUpvotes(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping load test in short mode")
	}

	repos, err := sqlite.NewRepositories(nil, testutil.SetupTestDB(t))
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	tools := testutil.SampleTools()
	for _, tool := range tools {
		tool.Upvotes = 0
	}
	testutil.SeedTools(t, repos.Tools, tools...)

	ledger := upvote.NewLedger(repos.Tools, repos.Upvotes, nil)
	ctx := context.Background()

	const callers, repeats = 20, 5
	var added int64
	var errCount int64
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		for _, tool := range tools {
			for r := 0; r < repeats; r++ {
				wg.Add(1)
				go func(fp, toolID string) {
					defer wg.Done()
					out, err := ledger.Register(ctx, toolID, fp)
					if err != nil {
						atomic.AddInt64(&errCount, 1)
						return
					}
					if out.Added {
						atomic.AddInt64(&added, 1)
					}
				}(fmt.Sprintf("fp-%02d", c), tool.ID)
			}
		}
	}
	wg.Wait()

	if errCount != 0 {
		t.Fatalf("%d registrations failed", errCount)
	}
	if want := int64(callers * len(tools)); added != want {
		t.Errorf("added = %d, want %d", added, want)
	}
	for _, tool := range tools {
		got, err := repos.Tools.GetByID(ctx, tool.ID)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", tool.ID, err)
		}
		if got.Upvotes != callers {
			t.Errorf("%s upvotes = %d, want %d", tool.ID, got.Upvotes, callers)
		}
	}
}

// TestLoad_ConcurrentShares shares permutations of one set in parallel and
// checks a single shared collection results.
func TestLoad_ConcurrentShares(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping load test in short mode")
	}

	repos, err := sqlite.NewRepositories(nil, testutil.SetupTestDB(t))
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	sharer := collection.NewSharer(repos.SharedCollections, nil)
	ctx := context.Background()

	perms := [][]string{
		{"notion", "figma", "linear"},
		{"figma", "linear", "notion"},
		{"linear", "notion", "figma"},
	}

	ids := make(chan string, 60)
	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sc, _, err := sharer.GetOrCreate(ctx, perms[i%len(perms)])
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
	if len(distinct) != 1 {
		t.Errorf("distinct shared ids = %d, want 1", len(distinct))
	}
}
