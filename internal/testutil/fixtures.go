package testutil

import (
	"time"

	"github.com/iecho/tooldir/internal/models"
)

// SampleTools returns a small catalog covering every tier, several
// categories and audiences, and one popular entry.
func SampleTools() []*models.Tool {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	icon := "https://cdn.example.com/notion.png"

	return []*models.Tool{
		{
			ID:          "notion",
			Name:        "Notion",
			Description: "All-in-one workspace for notes and docs",
			Categories:  []string{"productivity", "notes"},
			Tags:        []string{"wiki", "docs"},
			URL:         "https://www.notion.so",
			Icon:        &icon,
			Audience:    []string{"students", "teams"},
			Tier:        models.TierFreemium,
			IsPopular:   true,
			Upvotes:     12,
			CreatedAt:   base,
		},
		{
			ID:          "figma",
			Name:        "Figma",
			Description: "Collaborative interface design",
			Categories:  []string{"design"},
			Tags:        []string{"ui", "prototyping"},
			URL:         "https://www.figma.com",
			Audience:    []string{"designers", "teams"},
			Tier:        models.TierFreemium,
			Upvotes:     8,
			CreatedAt:   base.Add(24 * time.Hour),
		},
		{
			ID:          "obsidian",
			Name:        "Obsidian",
			Description: "Local-first markdown knowledge base",
			Categories:  []string{"notes"},
			Tags:        []string{"markdown"},
			URL:         "https://obsidian.md",
			Audience:    []string{"students"},
			Tier:        models.TierFree,
			Upvotes:     5,
			CreatedAt:   base.Add(48 * time.Hour),
		},
		{
			ID:          "linear",
			Name:        "Linear",
			Description: "Issue tracking for software teams",
			Categories:  []string{"productivity", "engineering"},
			Tags:        []string{"issues"},
			URL:         "https://linear.app",
			Audience:    []string{"teams"},
			Tier:        models.TierPaid,
			Upvotes:     0,
			CreatedAt:   base.Add(72 * time.Hour),
		},
	}
}

// SampleTool returns one tool by id from SampleTools, or nil.
func SampleTool(id string) *models.Tool {
	for _, tool := range SampleTools() {
		if tool.ID == id {
			return tool
		}
	}
	return nil
}
