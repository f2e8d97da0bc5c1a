package tooldir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client limits, mirroring the server's.
const (
	maxListLimit   = 100
	maxSearchLimit = 50
	maxToolIDs     = 50
)

const defaultUserAgent = "tooldir-go-sdk/1.0"

// Client is the tooldir API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
}

// NewClient creates a new client with the given configuration.
//
// Example:
//
//	client, err := tooldir.NewClient(tooldir.ClientConfig{
//	    BaseURL: "https://tools.example.com",
//	})
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &ValidationError{Field: "BaseURL", Message: "is required"}
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &ValidationError{Field: "BaseURL", Message: "must be a valid URL"}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &ValidationError{Field: "BaseURL", Message: "must use http or https protocol"}
	}
	if parsedURL.Host == "" {
		return nil, &ValidationError{Field: "BaseURL", Message: "must include a host"}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request makes an HTTP request to the API. body, when non-nil, is sent as JSON.
func (c *Client) request(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// handleResponse checks for errors and decodes the JSON response.
func handleResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
			Field string `json:"field"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			errResp.Error = resp.Status
		}
		apiErr := newAPIError(resp.StatusCode, errResp.Code, errResp.Error, errResp.Field)
		apiErr.RateLimit = parseRateLimit(resp.Header)
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// parseRateLimit reads the X-RateLimit-* headers. It returns nil when the
// response carried none.
func parseRateLimit(h http.Header) *RateLimit {
	limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if err != nil {
		return nil
	}
	remaining, _ := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	rl := &RateLimit{Limit: limit, Remaining: remaining}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0)
	}
	return rl
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// validateToolIDs applies the server's collection rules locally.
func validateToolIDs(ids []string, requireOne bool) error {
	if len(ids) > maxToolIDs {
		return &ValidationError{Field: "toolIds", Message: fmt.Sprintf("cannot exceed %d tools", maxToolIDs)}
	}
	nonEmpty := 0
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Field: "toolIds", Message: "tool ID cannot be empty"}
		}
		nonEmpty++
	}
	if requireOne && nonEmpty == 0 {
		return &ValidationError{Field: "toolIds", Message: "at least one tool ID is required"}
	}
	return nil
}

// validatePagination validates pagination parameters. Zero means server default.
func validatePagination(page, limit, maxLimit int) error {
	if page < 0 {
		return &ValidationError{Field: "page", Message: "must be a positive integer"}
	}
	if limit < 0 || limit > maxLimit {
		return &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", maxLimit),
		}
	}
	return nil
}
