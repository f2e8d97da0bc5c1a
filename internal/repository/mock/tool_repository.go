// Package mock provides mock implementations of repository interfaces for testing.
// These mocks allow tests to run without a real database and provide
// configurable behavior for testing error conditions and races.
//
// IMPORTANT: Error injection fields (e.g., CreateError) and hooks (e.g., OnCreate)
// should be set BEFORE any concurrent operations begin. They are not protected
// by the mutex.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// ToolRepository is an in-memory repository.ToolRepository.
type ToolRepository struct {
	mu    sync.RWMutex
	tools map[string]*models.Tool

	// Error injection
	GetByIDError          error
	GetManyError          error
	ListError             error
	MissingIDsError       error
	IncrementUpvotesError error
	UpsertError           error
	DeleteAllError        error
	StatsError            error

	// Call counters
	IncrementCalls int
}

// NewToolRepository creates an empty mock ToolRepository.
func NewToolRepository() *ToolRepository {
	return &ToolRepository{tools: make(map[string]*models.Tool)}
}

var _ repository.ToolRepository = (*ToolRepository)(nil)

func cloneTool(t *models.Tool) *models.Tool {
	c := *t
	c.Categories = append([]string(nil), t.Categories...)
	c.Tags = append([]string(nil), t.Tags...)
	c.Audience = append([]string(nil), t.Audience...)
	return &c
}

// Add stores a tool directly, bypassing error injection.
func (r *ToolRepository) Add(tool *models.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = time.Now().UTC()
	}
	r.tools[tool.ID] = cloneTool(tool)
}

func (r *ToolRepository) GetByID(ctx context.Context, id string) (*models.Tool, error) {
	if r.GetByIDError != nil {
		return nil, r.GetByIDError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTool(tool), nil
}

func (r *ToolRepository) GetMany(ctx context.Context, ids []string) ([]models.Tool, error) {
	if r.GetManyError != nil {
		return nil, r.GetManyError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Tool{}
	seen := make(map[string]bool)
	for _, id := range ids {
		if tool, ok := r.tools[id]; ok && !seen[id] {
			out = append(out, *cloneTool(tool))
			seen[id] = true
		}
	}
	return out, nil
}

func containsFold(values []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func matches(t *models.Tool, q repository.ToolQuery) bool {
	if q.Search != "" && !containsFold([]string{t.Name, t.Description}, q.Search) && !containsFold(t.Tags, q.Search) {
		return false
	}
	if q.Category != "" && !containsFold(t.Categories, q.Category) {
		return false
	}
	if q.Audience != "" && !containsFold(t.Audience, q.Audience) {
		return false
	}
	if q.Tier != "" && t.Tier != q.Tier {
		return false
	}
	if q.Popular != nil && t.IsPopular != *q.Popular {
		return false
	}
	return true
}

func (r *ToolRepository) List(ctx context.Context, q repository.ToolQuery) (*repository.ToolPage, error) {
	if r.ListError != nil {
		return nil, r.ListError
	}
	if q.PageLimit <= 0 {
		q.PageLimit = repository.DefaultPageLimit
	}

	r.mu.RLock()
	var filtered []models.Tool
	for _, t := range r.tools {
		if matches(t, q) {
			filtered = append(filtered, *cloneTool(t))
		}
	}
	r.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch q.Sort {
		case repository.SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case repository.SortNew:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			if a.Upvotes != b.Upvotes {
				return a.Upvotes > b.Upvotes
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})

	total := int64(len(filtered))
	page, totalPages, offset := repository.PageBounds(total, q.Page, q.PageLimit)
	end := offset + q.PageLimit
	if end > len(filtered) {
		end = len(filtered)
	}
	tools := []models.Tool{}
	if offset < len(filtered) {
		tools = append(tools, filtered[offset:end]...)
	}

	return &repository.ToolPage{Tools: tools, Total: total, Page: page, TotalPages: totalPages}, nil
}

func (r *ToolRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if r.MissingIDsError != nil {
		return nil, r.MissingIDsError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]bool)
	for _, id := range ids {
		if _, ok := r.tools[id]; ok {
			found[id] = true
		}
	}
	return repository.Missing(ids, found), nil
}

func (r *ToolRepository) IncrementUpvotes(ctx context.Context, id string) error {
	if r.IncrementUpvotesError != nil {
		return r.IncrementUpvotesError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IncrementCalls++
	tool, ok := r.tools[id]
	if !ok {
		return repository.ErrNotFound
	}
	tool.Upvotes++
	return nil
}

func (r *ToolRepository) Upsert(ctx context.Context, tool *models.Tool, preserveUpvotes bool) error {
	if r.UpsertError != nil {
		return r.UpsertError
	}
	if tool == nil || tool.ID == "" {
		return repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneTool(tool)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if existing, ok := r.tools[tool.ID]; ok && preserveUpvotes {
		stored.Upvotes = existing.Upvotes
		stored.CreatedAt = existing.CreatedAt
	}
	r.tools[tool.ID] = stored
	return nil
}

func (r *ToolRepository) DeleteAll(ctx context.Context) (int64, error) {
	if r.DeleteAllError != nil {
		return 0, r.DeleteAllError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.tools))
	r.tools = make(map[string]*models.Tool)
	return n, nil
}

func (r *ToolRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	if r.StatsError != nil {
		return nil, r.StatsError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &models.CatalogStats{Tools: int64(len(r.tools))}
	for _, t := range r.tools {
		stats.Upvotes += t.Upvotes
	}
	return stats, nil
}
