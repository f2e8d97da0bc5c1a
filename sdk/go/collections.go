package tooldir

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// GetCollection returns the caller's personal collection.
func (c *Client) GetCollection(ctx context.Context) (*Collection, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/collections", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data Collection `json:"data"`
	}
	if err := handleResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// SaveCollection replaces the caller's personal collection. An empty list
// clears it.
func (c *Client) SaveCollection(ctx context.Context, toolIDs []string) (*Collection, error) {
	if toolIDs == nil {
		toolIDs = []string{}
	}
	if err := validateToolIDs(toolIDs, false); err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, http.MethodPut, "/api/collections", map[string][]string{"toolIds": toolIDs})
	if err != nil {
		return nil, err
	}
	rateLimit := parseRateLimit(resp.Header)

	var body struct {
		Data Collection `json:"data"`
	}
	if err := handleResponse(resp, &body); err != nil {
		return nil, err
	}
	body.Data.RateLimit = rateLimit
	return &body.Data, nil
}

// ShareCollection publishes a set of tools and returns its public link.
// Sharing the same set again, in any order, returns the same id.
func (c *Client) ShareCollection(ctx context.Context, toolIDs []string) (*ShareResult, error) {
	if err := validateToolIDs(toolIDs, true); err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, http.MethodPost, "/api/collections/share", map[string][]string{"toolIds": toolIDs})
	if err != nil {
		return nil, err
	}
	rateLimit := parseRateLimit(resp.Header)

	var result ShareResult
	if err := handleResponse(resp, &result); err != nil {
		return nil, err
	}
	result.RateLimit = rateLimit
	return &result, nil
}

// GetSharedCollection returns a shared collection by id.
func (c *Client) GetSharedCollection(ctx context.Context, id string) (*SharedCollection, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	resp, err := c.request(ctx, http.MethodGet, "/api/collections/share/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data SharedCollection `json:"data"`
	}
	if err := handleResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}
