// Package tooldir provides a Go client SDK for the tooldir curated tools API.
package tooldir

import (
	"net/http"
	"time"
)

// Tool is a catalog listing.
type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	// Icon is nil when the tool has no icon.
	Icon      *string   `json:"icon"`
	Audience  []string  `json:"audience"`
	Tier      string    `json:"tier"`
	IsPopular bool      `json:"isPopular"`
	Upvotes   int64     `json:"upvotes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ToolList is one page of tools.
type ToolList struct {
	Tools      []Tool     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Sort orders accepted by ListTools and SearchTools.
const (
	SortPopular = "popular"
	SortName    = "name"
	SortNew     = "new"
)

// Tiers.
const (
	TierFree     = "free"
	TierFreemium = "freemium"
	TierPaid     = "paid"
)

// ListOptions filters a listing. Zero values are omitted from the request.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
	Audience string
	Tier     string
	// PopularOnly restricts results to tools flagged popular.
	PopularOnly bool
	Sort        string
}

// RateLimit is the caller's budget for the action just performed, read from
// the X-RateLimit-* response headers.
type RateLimit struct {
	Limit     int
	Remaining int
	// Reset is when the current window ends.
	Reset time.Time
}

// UpvoteResult is returned by Upvote.
type UpvoteResult struct {
	Tool Tool
	// Added is false when this caller had already upvoted the tool.
	Added     bool
	RateLimit *RateLimit
}

// Collection is the caller's personal list of tools. ID and CreatedAt are
// nil when nothing has been saved yet.
type Collection struct {
	ID        *int64     `json:"id"`
	ToolIDs   []string   `json:"toolIds"`
	CreatedAt *time.Time `json:"createdAt"`

	RateLimit *RateLimit `json:"-"`
}

// ShareResult is returned by ShareCollection.
type ShareResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	// Cached is true when the same set of tools had been shared before.
	Cached bool `json:"cached"`

	RateLimit *RateLimit `json:"-"`
}

// SharedCollection is a shared list with its tools resolved, in stored order.
type SharedCollection struct {
	ID        string    `json:"id"`
	ToolIDs   []string  `json:"toolIds"`
	Tools     []Tool    `json:"tools"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the server root, e.g. "https://tools.example.com". Required.
	BaseURL string
	// Timeout for each request. Default 30s.
	Timeout time.Duration
	// UserAgent is sent on every request. The server derives the caller's
	// identity from it, so keep it stable across calls.
	UserAgent string
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient HTTPDoer
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
