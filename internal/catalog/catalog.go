// Package catalog loads the curated tool list from a JSON document and syncs
// it into the tool repository.
//
// The document shape is {"tools": [...]}. Each entry carries its categories
// either as "categories" (string or list) or the legacy single "category".
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/iecho/tooldir/internal/models"
)

// MaxDocumentBytes bounds the size of a catalog document.
const MaxDocumentBytes = 10 << 20

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ErrNotJSON is returned when the document is not detected as JSON.
var ErrNotJSON = errors.New("catalog document is not JSON")

// Entry is one tool as written in the catalog document.
type Entry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Categories  json.RawMessage `json:"categories,omitempty"`
	Tags        []string        `json:"tags"`
	URL         string          `json:"url"`
	Icon        *string         `json:"icon,omitempty"`
	Audience    []string        `json:"audience"`
	Tier        string          `json:"tier"`
	IsPopular   *bool           `json:"isPopular,omitempty"`
}

type document struct {
	Tools []Entry `json:"tools"`
}

// Issue describes one invalid field of one entry.
type Issue struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.ID != "" {
		return fmt.Sprintf("tools[%d] (%s).%s: %s", i.Index, i.ID, i.Field, i.Message)
	}
	return fmt.Sprintf("tools[%d].%s: %s", i.Index, i.Field, i.Message)
}

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		lines = append(lines, issue.String())
	}
	return fmt.Sprintf("catalog validation failed (%d issues): %s", len(e.Issues), strings.Join(lines, "; "))
}

// Parse checks that data looks like JSON, decodes it and validates every
// entry. The whole document is rejected if any entry is invalid.
func Parse(data []byte) ([]*models.Tool, error) {
	if !looksLikeJSON(data) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotJSON, mimetype.Detect(data).String())
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	var issues []Issue
	tools := make([]*models.Tool, 0, len(doc.Tools))
	seen := make(map[string]int, len(doc.Tools))

	for i, entry := range doc.Tools {
		tool, entryIssues := entry.toTool(i)
		if prev, dup := seen[tool.ID]; dup && tool.ID != "" {
			entryIssues = append(entryIssues, Issue{
				Index: i, ID: tool.ID, Field: "id",
				Message: fmt.Sprintf("duplicate of tools[%d]", prev),
			})
		}
		seen[tool.ID] = i

		if len(entryIssues) > 0 {
			issues = append(issues, entryIssues...)
			continue
		}
		tools = append(tools, tool)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return tools, nil
}

// looksLikeJSON reports whether data is detected as JSON or a JSON-based
// format such as GeoJSON. Plain text, CSV and truncated documents are not.
func looksLikeJSON(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/json") {
			return true
		}
	}
	return false
}

func (e Entry) toTool(index int) (*models.Tool, []Issue) {
	id := strings.TrimSpace(e.ID)
	var issues []Issue
	add := func(field, msg string) {
		issues = append(issues, Issue{Index: index, ID: id, Field: field, Message: msg})
	}

	if !slugPattern.MatchString(id) {
		add("id", "must be a lowercase slug")
	}

	name := strings.TrimSpace(e.Name)
	if name == "" {
		add("name", "is required")
	}
	description := strings.TrimSpace(e.Description)
	if description == "" {
		add("description", "is required")
	}

	rawURL := strings.TrimSpace(e.URL)
	if !validHTTPURL(rawURL) {
		add("url", "must be an http or https URL")
	}

	tier := models.Tier(strings.TrimSpace(e.Tier))
	if !tier.Valid() {
		add("tier", "must be free, freemium or paid")
	}

	categories, err := e.categories()
	if err != nil {
		add("categories", err.Error())
	} else if len(categories) == 0 {
		add("categories", "each tool must provide at least one category")
	}

	audience := cleanList(e.Audience)
	if len(audience) == 0 {
		add("audience", "each tool must name at least one audience")
	}

	var icon *string
	if e.Icon != nil {
		if trimmed := strings.TrimSpace(*e.Icon); trimmed != "" {
			icon = &trimmed
		}
	}

	tool := &models.Tool{
		ID:          id,
		Name:        name,
		Description: description,
		Categories:  categories,
		Tags:        cleanList(e.Tags),
		URL:         rawURL,
		Icon:        icon,
		Audience:    audience,
		Tier:        tier,
		IsPopular:   e.IsPopular != nil && *e.IsPopular,
	}
	return tool, issues
}

// categories accepts "categories" as a string or list, falling back to the
// legacy "category" field.
func (e Entry) categories() ([]string, error) {
	raw := bytes.TrimSpace(e.Categories)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return cleanList([]string{e.Category}), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list), nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return cleanList([]string{single}), nil
	}
	return nil, errors.New("must be a string or a list of strings")
}

// cleanList trims values and drops empties and repeats, keeping first occurrence.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
