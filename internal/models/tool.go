package models

import "time"

// Tier is the pricing tier of a listed tool
type Tier string

const (
	TierFree     Tier = "free"
	TierFreemium Tier = "freemium"
	TierPaid     Tier = "paid"
)

// Valid reports whether t is one of the known tiers
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierFreemium, TierPaid:
		return true
	}
	return false
}

// Tool is a catalog listing. Upvotes is the denormalized counter kept in
// step with the upvotes table.
type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	Icon        *string   `json:"icon"` // nullable
	Audience    []string  `json:"audience"`
	Tier        Tier      `json:"tier"`
	IsPopular   bool      `json:"isPopular"`
	Upvotes     int64     `json:"upvotes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Upvote records that a fingerprint upvoted a tool. (ToolID, Fingerprint) is unique.
type Upvote struct {
	ID          int64
	ToolID      string
	Fingerprint string
	CreatedAt   time.Time
}

// CatalogStats is a point-in-time summary used by the metrics collector
type CatalogStats struct {
	Tools             int64
	Upvotes           int64
	SharedCollections int64
}
