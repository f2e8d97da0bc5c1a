package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// Listing limits
const (
	defaultListLimit   = 20
	maxListLimit       = 100
	defaultSearchLimit = 30
	maxSearchLimit     = 50
)

// searchParams are the only query parameters accepted by the search endpoint
var searchParams = map[string]bool{
	"q": true, "page": true, "limit": true, "category": true,
	"audience": true, "tier": true, "popular": true, "sort": true,
}

// ListToolsHandler returns a filtered, paginated catalog listing
func ListToolsHandler(tools repository.ToolRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseToolQuery(r.URL.Query(), defaultListLimit, maxListLimit)
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		listTools(w, r, tools, q)
	}
}

// SearchToolsHandler matches q against name, description and tags. Results
// are ordered by upvotes unless another sort is requested.
func SearchToolsHandler(tools repository.ToolRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		for key := range values {
			if !searchParams[key] {
				sendAppError(w, r, apperror.ValidationFailed(key, "Unrecognized query parameter "+strconv.Quote(key)))
				return
			}
		}

		search := strings.TrimSpace(values.Get("q"))
		if search == "" {
			sendAppError(w, r, apperror.ValidationFailed("q", "Search query is required"))
			return
		}

		q, err := parseToolQuery(values, defaultSearchLimit, maxSearchLimit)
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		q.Search = search
		listTools(w, r, tools, q)
	}
}

// GetToolHandler returns a single tool by id
func GetToolHandler(tools repository.ToolRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tool, err := tools.GetByID(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			sendAppError(w, r, apperror.NotFound("Tool", id))
			return
		}
		if err != nil {
			sendAppError(w, r, err)
			return
		}

		sendJSON(w, http.StatusOK, models.DataResponse{Data: tool})
	}
}

func listTools(w http.ResponseWriter, r *http.Request, tools repository.ToolRepository, q repository.ToolQuery) {
	page, err := tools.List(r.Context(), q)
	if err != nil {
		slog.Error("failed to list tools", "error", err)
		sendAppError(w, r, err)
		return
	}

	data := page.Tools
	if data == nil {
		data = []models.Tool{}
	}
	sendJSON(w, http.StatusOK, models.ToolListResponse{
		Data: data,
		Pagination: models.Pagination{
			Page:       page.Page,
			Limit:      q.PageLimit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// parseToolQuery reads the filters shared by listing and search
func parseToolQuery(values url.Values, defaultLimit, maxLimit int) (repository.ToolQuery, error) {
	q := repository.ToolQuery{
		Sort:      repository.SortPopular,
		Page:      1,
		PageLimit: defaultLimit,
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, apperror.ValidationFailed("page", "page must be a positive integer")
		}
		q.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return q, apperror.ValidationFailed("limit", "limit must be between 1 and "+strconv.Itoa(maxLimit))
		}
		q.PageLimit = limit
	}

	q.Category = strings.TrimSpace(values.Get("category"))
	q.Audience = strings.TrimSpace(values.Get("audience"))

	if raw := strings.TrimSpace(values.Get("tier")); raw != "" {
		tier := models.Tier(strings.ToLower(raw))
		if !tier.Valid() {
			return q, apperror.ValidationFailed("tier", "tier must be free, freemium or paid")
		}
		q.Tier = tier
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		switch raw {
		case repository.SortPopular, repository.SortName, repository.SortNew:
			q.Sort = raw
		default:
			return q, apperror.ValidationFailed("sort", "sort must be popular, name or new")
		}
	}

	// Anything other than an explicit true/false leaves the filter off.
	switch strings.ToLower(strings.TrimSpace(values.Get("popular"))) {
	case "true", "1":
		popular := true
		q.Popular = &popular
	case "false", "0":
		popular := false
		q.Popular = &popular
	}

	return q, nil
}
