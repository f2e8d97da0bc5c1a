package models

import "time"

// ErrorResponse is the JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// DataResponse wraps a payload as {"data": ...}
type DataResponse struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ToolListResponse is returned by the listing and search endpoints
type ToolListResponse struct {
	Data       []Tool     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// UpvoteMeta reports whether the call recorded a new upvote
type UpvoteMeta struct {
	Added bool `json:"added"`
}

// CollectionView is the personal collection payload. ID and CreatedAt are
// null when nothing has been saved yet.
type CollectionView struct {
	ID        *int64     `json:"id"`
	ToolIDs   []string   `json:"toolIds"`
	CreatedAt *time.Time `json:"createdAt"`
}

// ShareResponse is returned after sharing a collection
type ShareResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Cached bool   `json:"cached"`
}

// SharedCollectionView is a shared collection with its tools resolved, in stored order
type SharedCollectionView struct {
	ID        string    `json:"id"`
	ToolIDs   []string  `json:"toolIds"`
	Tools     []Tool    `json:"tools"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactReceipt acknowledges a stored contact message
type ContactReceipt struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// HealthResponse is the JSON response for the health check endpoint
type HealthResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Database       string `json:"database"`
	DatabaseType   string `json:"database_type"`
	RateLimitStore string `json:"rate_limit_store"`
	RateLimitMode  string `json:"rate_limit_mode"` // shared or fallback
	Fallbacks      int64  `json:"rate_limit_fallbacks"`
}
