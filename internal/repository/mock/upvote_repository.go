package mock

import (
	"context"
	"sync"

	"github.com/iecho/tooldir/internal/repository"
)

// UpvoteRepository is an in-memory repository.UpvoteRepository that enforces
// (tool, fingerprint) uniqueness like the real backends.
type UpvoteRepository struct {
	mu    sync.Mutex
	pairs map[[2]string]bool

	ExistsError error
	CreateError error

	// OnCreate runs before the insert; returning an error aborts it.
	OnCreate func(ctx context.Context, toolID, fingerprint string) error
	// OnExists, when set, replaces the lookup.
	OnExists func(ctx context.Context, toolID, fingerprint string) (bool, error)
}

// NewUpvoteRepository creates an empty mock UpvoteRepository.
func NewUpvoteRepository() *UpvoteRepository {
	return &UpvoteRepository{pairs: make(map[[2]string]bool)}
}

var _ repository.UpvoteRepository = (*UpvoteRepository)(nil)

func (r *UpvoteRepository) Exists(ctx context.Context, toolID, fingerprint string) (bool, error) {
	if r.ExistsError != nil {
		return false, r.ExistsError
	}
	if r.OnExists != nil {
		return r.OnExists(ctx, toolID, fingerprint)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs[[2]string{toolID, fingerprint}], nil
}

func (r *UpvoteRepository) Create(ctx context.Context, toolID, fingerprint string) error {
	if r.CreateError != nil {
		return r.CreateError
	}
	if r.OnCreate != nil {
		if err := r.OnCreate(ctx, toolID, fingerprint); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{toolID, fingerprint}
	if r.pairs[key] {
		return &repository.ConstraintViolation{Constraint: "upvotes_tool_fingerprint_key"}
	}
	r.pairs[key] = true
	return nil
}

func (r *UpvoteRepository) CountByTool(ctx context.Context, toolID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.pairs {
		if key[0] == toolID {
			n++
		}
	}
	return n, nil
}
