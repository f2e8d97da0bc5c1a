package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/fingerprint"
)

type recommendRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (rr *recommendRequest) validate() error {
	rr.Name = strings.TrimSpace(rr.Name)
	rr.URL = strings.TrimSpace(rr.URL)
	rr.Description = strings.TrimSpace(rr.Description)
	rr.Email = strings.TrimSpace(rr.Email)

	if rr.Name == "" {
		return apperror.ValidationFailed("name", "Name is required")
	}
	if utf8.RuneCountInString(rr.Name) > 120 {
		return apperror.ValidationFailed("name", "Name must be at most 120 characters")
	}
	if !validHTTPURL(rr.URL) {
		return apperror.ValidationFailed("url", "URL must be a valid http or https address")
	}
	if utf8.RuneCountInString(rr.Description) > 1000 {
		return apperror.ValidationFailed("description", "Description must be at most 1000 characters")
	}
	if rr.Email != "" && !validEmail(rr.Email) {
		return apperror.ValidationFailed("email", "Email must be valid")
	}
	return nil
}

func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RecommendHandler accepts a tool suggestion for later review. Suggestions are
// only logged.
func RecommendHandler(guard *RateGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := decodeJSON(w, r, &req); err != nil {
			sendAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			sendAppError(w, r, err)
			return
		}

		if !guard.Allow(w, r, config.ActionRecommend, fingerprint.FromRequest(r)) {
			return
		}

		slog.Info("tool recommendation received",
			"name", req.Name,
			"url", req.URL,
			"description", req.Description,
			"email", req.Email,
		)

		sendJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
