package repository

import (
	"context"

	"github.com/iecho/tooldir/internal/models"
)

// Sort orders accepted by ToolRepository.List.
const (
	SortPopular = "popular" // upvotes desc, then name
	SortName    = "name"
	SortNew     = "new" // created_at desc
)

// ToolQuery filters and pages a catalog listing. Empty fields don't filter.
type ToolQuery struct {
	Search    string // case-insensitive match on name, description and tags
	Category  string // case-insensitive substring match against any category
	Audience  string // case-insensitive substring match against any audience
	Tier      models.Tier
	Popular   *bool // nil: no filter
	Sort      string
	Page      int // 1-based, clamped to the last page
	PageLimit int
}

// ToolPage is one page of a listing. Page is the page actually returned
// after clamping; TotalPages is never less than 1.
type ToolPage struct {
	Tools      []models.Tool
	Total      int64
	Page       int
	TotalPages int
}

// ToolRepository provides access to catalog entries.
type ToolRepository interface {
	// GetByID returns the tool or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Tool, error)

	// GetMany returns the tools that exist among ids, in the order of ids.
	GetMany(ctx context.Context, ids []string) ([]models.Tool, error)

	// List returns a filtered, sorted page.
	List(ctx context.Context, q ToolQuery) (*ToolPage, error)

	// MissingIDs returns the ids that have no tool row, in input order.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)

	// IncrementUpvotes adds exactly one to the tool's counter in a single
	// statement (upvotes = upvotes + 1). Returns ErrNotFound if no row changed.
	IncrementUpvotes(ctx context.Context, id string) error

	// Upsert inserts or replaces a catalog entry. When preserveUpvotes is set
	// an existing row keeps its counter and creation time.
	Upsert(ctx context.Context, tool *models.Tool, preserveUpvotes bool) error

	// DeleteAll removes every tool (and, by cascade, its upvotes).
	DeleteAll(ctx context.Context) (int64, error)

	// Stats returns catalog totals for monitoring.
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// PageBounds clamps page into [1, totalPages] and returns the row offset.
// totalPages is never less than 1 so an empty result still has a page 1.
func PageBounds(total int64, page, limit int) (safePage, totalPages, offset int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	totalPages = int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	safePage = page
	if safePage < 1 {
		safePage = 1
	}
	if safePage > totalPages {
		safePage = totalPages
	}
	return safePage, totalPages, (safePage - 1) * limit
}

// Missing returns the ids not present in found, in input order and without repeats.
func Missing(ids []string, found map[string]bool) []string {
	missing := []string{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if found[id] || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	return missing
}
