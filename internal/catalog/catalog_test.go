package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iecho/tooldir/internal/models"
)

const validDoc = `{
  "tools": [
    {
      "id": "notion",
      "name": " Notion ",
      "description": "All-in-one workspace",
      "categories": ["productivity", " notes ", "productivity", ""],
      "tags": ["wiki"],
      "url": "https://www.notion.so",
      "icon": "https://cdn.example.com/notion.png",
      "audience": ["students"],
      "tier": "freemium",
      "isPopular": true
    },
    {
      "id": "obsidian",
      "name": "Obsidian",
      "description": "Markdown knowledge base",
      "category": "notes",
      "tags": [],
      "url": "https://obsidian.md",
      "audience": ["students"],
      "tier": "free"
    },
    {
      "id": "linear",
      "name": "Linear",
      "description": "Issue tracking",
      "categories": "engineering",
      "tags": ["issues"],
      "url": "https://linear.app",
      "icon": "  ",
      "audience": ["teams"],
      "tier": "paid"
    }
  ]
}`

func TestParse_Valid(t *testing.T) {
	tools, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	require.Len(t, tools, 3)

	notion := tools[0]
	assert.Equal(t, "Notion", notion.Name)
	assert.Equal(t, []string{"productivity", "notes"}, notion.Categories)
	assert.True(t, notion.IsPopular)
	require.NotNil(t, notion.Icon)
	assert.Equal(t, models.TierFreemium, notion.Tier)

	assert.Equal(t, []string{"notes"}, tools[1].Categories, "legacy category field")
	assert.False(t, tools[1].IsPopular)
	assert.Equal(t, []string{}, tools[1].Tags)

	assert.Equal(t, []string{"engineering"}, tools[2].Categories, "single string categories")
	assert.Nil(t, tools[2].Icon, "blank icon becomes null")
}

func TestParse_CollectsEveryIssue(t *testing.T) {
	doc := `{"tools": [
		{"id": "Bad Id", "name": "", "description": "x", "categories": ["a"], "tags": [], "url": "ftp://x", "audience": ["a"], "tier": "gold"},
		{"id": "ok", "name": "Ok", "description": "x", "categories": [" "], "tags": [], "url": "https://ok.dev", "audience": [], "tier": "free"},
		{"id": "ok", "name": "Ok", "description": "x", "categories": ["a"], "tags": [], "url": "https://ok.dev", "audience": ["a"], "tier": "free"}
	]}`

	_, err := Parse([]byte(doc))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]int{}
	for _, issue := range verr.Issues {
		fields[issue.Field]++
	}
	assert.Equal(t, 2, fields["id"], "bad slug and duplicate")
	assert.Equal(t, 1, fields["name"])
	assert.Equal(t, 1, fields["url"])
	assert.Equal(t, 1, fields["tier"])
	assert.Equal(t, 1, fields["categories"])
	assert.Equal(t, 1, fields["audience"])
	assert.Contains(t, err.Error(), "tools[2] (ok).id: duplicate of tools[1]")
}

func TestParse_RejectsNonJSON(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	_, err := Parse(png)
	assert.True(t, errors.Is(err, ErrNotJSON), "got %v", err)

	for _, doc := range []string{
		"id,name,url\nnotion,Notion,https://www.notion.so\n",
		"just some notes about tools",
		`{"tools": [`,
	} {
		_, err = Parse([]byte(doc))
		assert.True(t, errors.Is(err, ErrNotJSON), "%q: got %v", doc, err)
	}

	_, err = Parse([]byte(`{"tools": [{"id": 1}]}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotJSON), "well-formed JSON reaches the decoder")

	_, err = Parse([]byte(`{"tools": [], "extra": true}`))
	require.Error(t, err, "unknown top-level fields are rejected")
}

func TestParse_BadCategoriesType(t *testing.T) {
	doc := `{"tools": [{"id": "x", "name": "X", "description": "x", "categories": 42, "tags": [], "url": "https://x.dev", "audience": ["a"], "tier": "free"}]}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string or a list of strings")
}
