package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// Sharer returns one shared collection per distinct set of tool ids.
type Sharer struct {
	repo   repository.SharedCollectionRepository
	logger *slog.Logger
	newID  func() string
}

// NewSharer creates a Sharer.
func NewSharer(repo repository.SharedCollectionRepository, logger *slog.Logger) *Sharer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sharer{repo: repo, logger: logger, newID: uuid.NewString}
}

// GetOrCreate returns the shared collection for the set in toolIDs, creating
// it when none exists. cached reports whether an existing record was reused.
// When the set matches but the order differs, the stored order is replaced.
func (s *Sharer) GetOrCreate(ctx context.Context, toolIDs []string) (sc *models.SharedCollection, cached bool, err error) {
	ids := Normalize(toolIDs)
	if len(ids) == 0 {
		return nil, false, apperror.ValidationFailed("toolIds", "At least one tool id is required")
	}
	hash := ContentHash(ids)

	existing, err := s.repo.GetByHash(ctx, hash)
	switch {
	case err == nil:
		return s.reuse(ctx, existing, ids)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up shared collection: %w", err)
	}

	created := &models.SharedCollection{
		ID:        s.newID(),
		ToolIDs:   ids,
		ToolHash:  hash,
		CreatedAt: time.Now().UTC(),
	}
	err = s.repo.Create(ctx, created)
	if err == nil {
		metrics.SharedCollectionsTotal.WithLabelValues("created").Inc()
		return created, false, nil
	}
	if !repository.IsConstraintViolation(err) {
		return nil, false, fmt.Errorf("failed to create shared collection: %w", err)
	}

	// A concurrent request stored the same set first.
	existing, err = s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload shared collection: %w", err)
	}
	return s.reuse(ctx, existing, ids)
}

func (s *Sharer) reuse(ctx context.Context, existing *models.SharedCollection, ids []string) (*models.SharedCollection, bool, error) {
	if sameOrder(existing.ToolIDs, ids) {
		metrics.SharedCollectionsTotal.WithLabelValues("cached").Inc()
		return existing, true, nil
	}

	if err := s.repo.UpdateToolIDs(ctx, existing.ID, ids); err != nil {
		return nil, false, fmt.Errorf("failed to reorder shared collection: %w", err)
	}
	s.logger.Debug("shared collection reordered", "id", existing.ID)
	metrics.SharedCollectionsTotal.WithLabelValues("reordered").Inc()

	existing.ToolIDs = ids
	return existing, true, nil
}
