package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

const toolColumns = `id, name, description, categories, tags, url, icon, audience, tier, is_popular, upvotes, created_at`

// ToolRepository implements repository.ToolRepository for SQLite.
type ToolRepository struct {
	db *sql.DB
}

// NewToolRepository creates a new SQLite tool repository.
func NewToolRepository(db *sql.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTool(row rowScanner) (*models.Tool, error) {
	var (
		tool                             models.Tool
		categories, tags, audience, tier string
		icon                             sql.NullString
		createdAt                        string
	)
	err := row.Scan(&tool.ID, &tool.Name, &tool.Description, &categories, &tags, &tool.URL,
		&icon, &audience, &tier, &tool.IsPopular, &tool.Upvotes, &createdAt)
	if err != nil {
		return nil, err
	}

	if tool.Categories, err = decodeStrings(categories); err != nil {
		return nil, err
	}
	if tool.Tags, err = decodeStrings(tags); err != nil {
		return nil, err
	}
	if tool.Audience, err = decodeStrings(audience); err != nil {
		return nil, err
	}
	if icon.Valid {
		tool.Icon = &icon.String
	}
	tool.Tier = models.Tier(tier)

	tool.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &tool, nil
}

// GetByID returns the tool or repository.ErrNotFound.
func (r *ToolRepository) GetByID(ctx context.Context, id string) (*models.Tool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, id)
	tool, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
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

	query := `SELECT ` + toolColumns + ` FROM tools WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tools: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Tool, len(ids))
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		byID[tool.ID] = *tool
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tools: %w", err)
	}

	tools := make([]models.Tool, 0, len(byID))
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
	where, args := buildToolFilter(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tools`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tools: %w", err)
	}

	page, totalPages, offset := repository.PageBounds(total, q.Page, q.PageLimit)

	query := `SELECT ` + toolColumns + ` FROM tools` + where + ` ORDER BY ` + toolOrder(q.Sort) + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, q.PageLimit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
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

	return &repository.ToolPage{Tools: tools, Total: total, Page: page, TotalPages: totalPages}, nil
}

func buildToolFilter(q repository.ToolQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if q.Search != "" {
		pattern := "%" + escapeLikePattern(q.Search) + "%"
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(tools.tags) WHERE json_each.value LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}
	if q.Category != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(tools.categories) WHERE json_each.value LIKE ? ESCAPE '\')`)
		args = append(args, "%"+escapeLikePattern(q.Category)+"%")
	}
	if q.Audience != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(tools.audience) WHERE json_each.value LIKE ? ESCAPE '\')`)
		args = append(args, "%"+escapeLikePattern(q.Audience)+"%")
	}
	if q.Tier != "" {
		clauses = append(clauses, `tier = ?`)
		args = append(args, string(q.Tier))
	}
	if q.Popular != nil {
		clauses = append(clauses, `is_popular = ?`)
		args = append(args, *q.Popular)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func toolOrder(sort string) string {
	switch sort {
	case repository.SortName:
		return `name COLLATE NOCASE ASC, id ASC`
	case repository.SortNew:
		return `created_at DESC, name COLLATE NOCASE ASC`
	default:
		return `upvotes DESC, name COLLATE NOCASE ASC`
	}
}

// MissingIDs returns the ids with no tool row, in input order.
func (r *ToolRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tools WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
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
	result, err := r.db.ExecContext(ctx, `UPDATE tools SET upvotes = upvotes + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment upvotes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a catalog entry.
func (r *ToolRepository) Upsert(ctx context.Context, tool *models.Tool, preserveUpvotes bool) error {
	if tool == nil || tool.ID == "" {
		return repository.ErrInvalidInput
	}

	categories, err := encodeStrings(tool.Categories)
	if err != nil {
		return err
	}
	tags, err := encodeStrings(tool.Tags)
	if err != nil {
		return err
	}
	audience, err := encodeStrings(tool.Audience)
	if err != nil {
		return err
	}
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = time.Now().UTC()
	}

	update := `name = excluded.name, description = excluded.description, categories = excluded.categories,
		tags = excluded.tags, url = excluded.url, icon = excluded.icon, audience = excluded.audience,
		tier = excluded.tier, is_popular = excluded.is_popular`
	if !preserveUpvotes {
		update += `, upvotes = excluded.upvotes, created_at = excluded.created_at`
	}

	query := `INSERT INTO tools (` + toolColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ` + update

	_, err = r.db.ExecContext(ctx, query,
		tool.ID, tool.Name, tool.Description, categories, tags, tool.URL, tool.Icon, audience,
		string(tool.Tier), tool.IsPopular, tool.Upvotes, formatTimestamp(tool.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert tool %s: %w", tool.ID, err)
	}
	return nil
}

// DeleteAll removes every tool and every upvote.
func (r *ToolRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := beginImmediateTx(ctx, r.db)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM upvotes`); err != nil {
		return 0, fmt.Errorf("failed to delete upvotes: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tools`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tools: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

// Stats returns catalog totals.
func (r *ToolRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var stats models.CatalogStats
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(upvotes), 0) FROM tools`).Scan(&stats.Tools, &stats.Upvotes)
	if err != nil {
		return nil, fmt.Errorf("failed to get tool stats: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shared_collections`).Scan(&stats.SharedCollections); err != nil {
		return nil, fmt.Errorf("failed to count shared collections: %w", err)
	}
	return &stats, nil
}

var _ repository.ToolRepository = (*ToolRepository)(nil)
