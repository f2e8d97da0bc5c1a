package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

const toolColumns = `id, name, description, categories, tags, url, icon, audience, tier, is_popular, upvotes, created_at`

// ToolRepository implements repository.ToolRepository for PostgreSQL.
type ToolRepository struct {
	pool *Pool
}

// NewToolRepository creates a new PostgreSQL tool repository.
func NewToolRepository(pool *Pool) *ToolRepository {
	return &ToolRepository{pool: pool}
}

func scanTool(row pgx.Row) (*models.Tool, error) {
	var (
		tool models.Tool
		tier string
	)
	err := row.Scan(&tool.ID, &tool.Name, &tool.Description, &tool.Categories, &tool.Tags, &tool.URL,
		&tool.Icon, &tool.Audience, &tier, &tool.IsPopular, &tool.Upvotes, &tool.CreatedAt)
	if err != nil {
		return nil, err
	}
	tool.Tier = models.Tier(tier)
	tool.Categories = nonNil(tool.Categories)
	tool.Tags = nonNil(tool.Tags)
	tool.Audience = nonNil(tool.Audience)
	return &tool, nil
}

func collectTools(rows pgx.Rows) ([]models.Tool, error) {
	defer rows.Close()

	tools := []models.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		tools = append(tools, *tool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tools: %w", err)
	}
	return tools, nil
}

// GetByID returns the tool or repository.ErrNotFound.
func (r *ToolRepository) GetByID(ctx context.Context, id string) (*models.Tool, error) {
	tool, err := scanTool(r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	return tool, nil
}

// GetMany returns the existing tools among ids, in the order of ids.
func (r *ToolRepository) GetMany(ctx context.Context, ids []string) ([]models.Tool, error) {
	if len(ids) == 0 {
		return []models.Tool{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query tools: %w", err)
	}
	found, err := collectTools(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Tool, len(found))
	for _, tool := range found {
		byID[tool.ID] = tool
	}

	tools := make([]models.Tool, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if tool, ok := byID[id]; ok && !seen[id] {
			tools = append(tools, tool)
			seen[id] = true
		}
	}
	return tools, nil
}

// List returns a filtered, sorted page of tools.
func (r *ToolRepository) List(ctx context.Context, q repository.ToolQuery) (*repository.ToolPage, error) {
	if q.PageLimit <= 0 {
		q.PageLimit = repository.DefaultPageLimit
	}

	args := &argList{}
	where := buildToolFilter(q, args)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tools`+where, args.values...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tools: %w", err)
	}

	page, totalPages, offset := repository.PageBounds(total, q.Page, q.PageLimit)

	query := `SELECT ` + toolColumns + ` FROM tools` + where +
		` ORDER BY ` + toolOrder(q.Sort) +
		` LIMIT ` + args.add(q.PageLimit) + ` OFFSET ` + args.add(offset)
	rows, err := r.pool.Query(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	tools, err := collectTools(rows)
	if err != nil {
		return nil, err
	}

	return &repository.ToolPage{Tools: tools, Total: total, Page: page, TotalPages: totalPages}, nil
}

func buildToolFilter(q repository.ToolQuery, args *argList) string {
	var clauses []string

	if q.Search != "" {
		p := args.add("%" + escapeLikePattern(q.Search) + "%")
		clauses = append(clauses, `(name ILIKE `+p+` OR description ILIKE `+p+
			` OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE `+p+`))`)
	}
	if q.Category != "" {
		p := args.add("%" + escapeLikePattern(q.Category) + "%")
		clauses = append(clauses, `EXISTS (SELECT 1 FROM unnest(categories) AS c WHERE c ILIKE `+p+`)`)
	}
	if q.Audience != "" {
		p := args.add("%" + escapeLikePattern(q.Audience) + "%")
		clauses = append(clauses, `EXISTS (SELECT 1 FROM unnest(audience) AS a WHERE a ILIKE `+p+`)`)
	}
	if q.Tier != "" {
		clauses = append(clauses, `tier = `+args.add(string(q.Tier)))
	}
	if q.Popular != nil {
		clauses = append(clauses, `is_popular = `+args.add(*q.Popular))
	}

	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func toolOrder(sort string) string {
	switch sort {
	case repository.SortName:
		return `lower(name) ASC, id ASC`
	case repository.SortNew:
		return `created_at DESC, lower(name) ASC`
	default:
		return `upvotes DESC, lower(name) ASC`
	}
}

// MissingIDs returns the ids with no tool row, in input order.
func (r *ToolRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM tools WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tool id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tool ids: %w", err)
	}

	return repository.Missing(ids, found), nil
}

// IncrementUpvotes adds one to the tool's counter in a single statement.
func (r *ToolRepository) IncrementUpvotes(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tools SET upvotes = upvotes + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment upvotes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a catalog entry.
func (r *ToolRepository) Upsert(ctx context.Context, tool *models.Tool, preserveUpvotes bool) error {
	if tool == nil || tool.ID == "" {
		return repository.ErrInvalidInput
	}
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = time.Now().UTC()
	}

	update := `name = EXCLUDED.name, description = EXCLUDED.description, categories = EXCLUDED.categories,
		tags = EXCLUDED.tags, url = EXCLUDED.url, icon = EXCLUDED.icon, audience = EXCLUDED.audience,
		tier = EXCLUDED.tier, is_popular = EXCLUDED.is_popular`
	if !preserveUpvotes {
		update += `, upvotes = EXCLUDED.upvotes, created_at = EXCLUDED.created_at`
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO tools (`+toolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET `+update,
		tool.ID, tool.Name, tool.Description, nonNil(tool.Categories), nonNil(tool.Tags), tool.URL, tool.Icon,
		nonNil(tool.Audience), string(tool.Tier), tool.IsPopular, tool.Upvotes, tool.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tool %s: %w", tool.ID, err)
	}
	return nil
}

// DeleteAll removes every tool; upvotes go with them by cascade.
func (r *ToolRepository) DeleteAll(ctx context.Context) (int64, error) {
	return withRetry(ctx, defaultRetries, func() (int64, error) {
		tx, err := r.pool.BeginTx(ctx, TxOptions())
		if err != nil {
			return 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM upvotes`); err != nil {
			return 0, fmt.Errorf("failed to delete upvotes: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tools`)
		if err != nil {
			return 0, fmt.Errorf("failed to delete tools: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return tag.RowsAffected(), nil
	})
}

// Stats returns catalog totals.
func (r *ToolRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var stats models.CatalogStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tools),
			(SELECT COALESCE(SUM(upvotes), 0)::BIGINT FROM tools),
			(SELECT COUNT(*) FROM shared_collections)`).
		Scan(&stats.Tools, &stats.Upvotes, &stats.SharedCollections)
	if err != nil {
		return nil, fmt.Errorf("failed to get tool stats: %w", err)
	}
	return &stats, nil
}

var _ repository.ToolRepository = (*ToolRepository)(nil)
