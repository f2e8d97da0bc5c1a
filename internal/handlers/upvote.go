package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/fingerprint"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
	"github.com/iecho/tooldir/internal/upvote"
)

type upvoteRequest struct {
	ToolID string `json:"toolId"`
}

// UpvoteHandler records one upvote per fingerprint and tool. Unknown tools
// are rejected before the request counts against the caller's rate limit.
func UpvoteHandler(tools repository.ToolRepository, ledger *upvote.Ledger, guard *RateGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upvoteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			sendAppError(w, r, err)
			return
		}
		toolID := strings.TrimSpace(req.ToolID)
		if toolID == "" {
			sendAppError(w, r, apperror.ValidationFailed("toolId", "Tool ID is required"))
			return
		}

		if _, err := tools.GetByID(r.Context(), toolID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				sendAppError(w, r, apperror.NotFound("Tool", toolID))
				return
			}
			sendAppError(w, r, err)
			return
		}

		fp := fingerprint.FromRequest(r)
		if !guard.Allow(w, r, config.ActionUpvote, fp) {
			return
		}

		outcome, err := ledger.Register(r.Context(), toolID, fp)
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		if outcome.Tool == nil {
			// Removed by a catalog import between the check and the insert.
			sendAppError(w, r, apperror.NotFound("Tool", toolID))
			return
		}

		sendJSON(w, http.StatusOK, models.DataResponse{
			Data: outcome.Tool,
			Meta: models.UpvoteMeta{Added: outcome.Added},
		})
	}
}
