package tooldir

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListTools returns one page of the catalog.
func (c *Client) ListTools(ctx context.Context, opts *ListOptions) (*ToolList, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	if err := validatePagination(opts.Page, opts.Limit, maxListLimit); err != nil {
		return nil, err
	}
	return c.listTools(ctx, "/api/tools", opts.values())
}

// SearchTools matches query against tool names, descriptions and tags.
func (c *Client) SearchTools(ctx context.Context, query string, opts *ListOptions) (*ToolList, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if opts == nil {
		opts = &ListOptions{}
	}
	if err := validatePagination(opts.Page, opts.Limit, maxSearchLimit); err != nil {
		return nil, err
	}
	values := opts.values()
	values.Set("q", query)
	return c.listTools(ctx, "/api/tools/search", values)
}

// GetTool returns a single tool.
func (c *Client) GetTool(ctx context.Context, id string) (*Tool, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	resp, err := c.request(ctx, http.MethodGet, "/api/tools/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Data Tool `json:"data"`
	}
	if err := handleResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// Upvote records the caller's upvote for a tool. Repeat calls are harmless
// and report Added=false.
func (c *Client) Upvote(ctx context.Context, toolID string) (*UpvoteResult, error) {
	if strings.TrimSpace(toolID) == "" {
		return nil, &ValidationError{Field: "toolId", Message: "cannot be empty"}
	}

	resp, err := c.request(ctx, http.MethodPost, "/api/upvote", map[string]string{"toolId": toolID})
	if err != nil {
		return nil, err
	}
	rateLimit := parseRateLimit(resp.Header)

	var body struct {
		Data Tool `json:"data"`
		Meta struct {
			Added bool `json:"added"`
		} `json:"meta"`
	}
	if err := handleResponse(resp, &body); err != nil {
		return nil, err
	}
	return &UpvoteResult{Tool: body.Data, Added: body.Meta.Added, RateLimit: rateLimit}, nil
}

func (c *Client) listTools(ctx context.Context, path string, values url.Values) (*ToolList, error) {
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list ToolList
	if err := handleResponse(resp, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (o *ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Audience != "" {
		v.Set("audience", o.Audience)
	}
	if o.Tier != "" {
		v.Set("tier", o.Tier)
	}
	if o.PopularOnly {
		v.Set("popular", "true")
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	return v
}
