package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// MaxToolIDs caps the size of a saved or shared collection.
const MaxToolIDs = 50

// Service validates collection requests against the catalog before handing
// them to storage.
type Service struct {
	tools       repository.ToolRepository
	collections repository.CollectionRepository
	shared      repository.SharedCollectionRepository
	sharer      *Sharer
	logger      *slog.Logger
}

// NewService creates a Service.
func NewService(repos *repository.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tools:       repos.Tools,
		collections: repos.Collections,
		shared:      repos.SharedCollections,
		sharer:      NewSharer(repos.SharedCollections, logger),
		logger:      logger,
	}
}

// ValidateToolIDs checks the raw request list: at most MaxToolIDs entries and
// no blank ids.
func ValidateToolIDs(ids []string) error {
	if len(ids) > MaxToolIDs {
		return apperror.ValidationFailed("toolIds", fmt.Sprintf("Cannot save more than %d tools", MaxToolIDs))
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperror.ValidationFailed("toolIds", "Tool ID cannot be empty")
		}
	}
	return nil
}

// Get returns the personal collection for fingerprint, or nil when none was saved.
func (s *Service) Get(ctx context.Context, fingerprint string) (*models.Collection, error) {
	c, err := s.collections.GetByFingerprint(ctx, fingerprint)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return c, nil
}

// Save replaces the personal collection for fingerprint. An empty list is
// allowed and clears the collection.
func (s *Service) Save(ctx context.Context, fingerprint string, toolIDs []string) (*models.Collection, error) {
	ids, err := s.checked(ctx, toolIDs)
	if err != nil {
		return nil, err
	}

	c, err := s.collections.Save(ctx, fingerprint, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	return c, nil
}

// Share returns the shared collection for the given tools, creating it if needed.
func (s *Service) Share(ctx context.Context, toolIDs []string) (*models.SharedCollection, bool, error) {
	ids, err := s.checked(ctx, toolIDs)
	if err != nil {
		return nil, false, err
	}
	return s.sharer.GetOrCreate(ctx, ids)
}

// GetShared returns a shared collection in stored order together with the
// tools it references that still exist.
func (s *Service) GetShared(ctx context.Context, id string) (*models.SharedCollection, []models.Tool, error) {
	sc, err := s.shared.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperror.NotFound("Shared collection", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shared collection: %w", err)
	}

	found, err := s.tools.GetMany(ctx, sc.ToolIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tools: %w", err)
	}

	byID := make(map[string]models.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tools := make([]models.Tool, 0, len(sc.ToolIDs))
	for _, toolID := range sc.ToolIDs {
		if t, ok := byID[toolID]; ok {
			tools = append(tools, t)
		}
	}
	return sc, tools, nil
}

// checked validates, normalizes and confirms every id is in the catalog.
func (s *Service) checked(ctx context.Context, toolIDs []string) ([]string, error) {
	if err := ValidateToolIDs(toolIDs); err != nil {
		return nil, err
	}
	ids := Normalize(toolIDs)
	if len(ids) == 0 {
		return ids, nil
	}

	missing, err := s.tools.MissingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check tool ids: %w", err)
	}
	if len(missing) > 0 {
		return nil, apperror.UnknownTools("toolIds", missing)
	}
	return ids, nil
}
