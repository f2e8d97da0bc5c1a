package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/collection"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/fingerprint"
	"github.com/iecho/tooldir/internal/models"
)

type toolIDsRequest struct {
	ToolIDs []string `json:"toolIds"`
}

// decodeToolIDs parses and validates a {"toolIds": [...]} body
func decodeToolIDs(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var req toolIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if req.ToolIDs == nil {
		return nil, apperror.ValidationFailed("toolIds", "toolIds is required")
	}
	if err := collection.ValidateToolIDs(req.ToolIDs); err != nil {
		return nil, err
	}
	return req.ToolIDs, nil
}

// GetCollectionHandler returns the caller's personal collection. Callers who
// never saved one get an empty collection with null id and timestamp.
func GetCollectionHandler(svc *collection.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), fingerprint.FromRequest(r))
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, models.DataResponse{Data: collectionView(c)})
	}
}

// SaveCollectionHandler replaces the caller's personal collection
func SaveCollectionHandler(svc *collection.Service, guard *RateGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := decodeToolIDs(w, r)
		if err != nil {
			sendAppError(w, r, err)
			return
		}

		fp := fingerprint.FromRequest(r)
		if !guard.Allow(w, r, config.ActionCollections, fp) {
			return
		}

		c, err := svc.Save(r.Context(), fp, ids)
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, models.DataResponse{Data: collectionView(c)})
	}
}

// ShareCollectionHandler publishes a set of tools under a stable id. Sharing
// the same set again returns the existing id with cached=true.
func ShareCollectionHandler(svc *collection.Service, guard *RateGuard, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := decodeToolIDs(w, r)
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		if len(collection.Normalize(ids)) == 0 {
			sendAppError(w, r, apperror.ValidationFailed("toolIds", "At least one tool id is required"))
			return
		}

		if !guard.Allow(w, r, config.ActionShare, fingerprint.FromRequest(r)) {
			return
		}

		sc, cached, err := svc.Share(r.Context(), ids)
		if err != nil {
			sendAppError(w, r, err)
			return
		}

		slog.Info("collection shared",
			"share_id", sc.ID,
			"tools", len(sc.ToolIDs),
			"cached", cached,
		)
		sendJSON(w, http.StatusOK, models.ShareResponse{
			ID:     sc.ID,
			URL:    buildShareURL(r, publicURL, sc.ID),
			Cached: cached,
		})
	}
}

// GetSharedCollectionHandler returns a shared collection in stored order with
// its tools resolved
func GetSharedCollectionHandler(svc *collection.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, tools, err := svc.GetShared(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			sendAppError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, models.DataResponse{Data: models.SharedCollectionView{
			ID:        sc.ID,
			ToolIDs:   sc.ToolIDs,
			Tools:     tools,
			CreatedAt: sc.CreatedAt,
		}})
	}
}

func collectionView(c *models.Collection) models.CollectionView {
	if c == nil {
		return models.CollectionView{ToolIDs: []string{}}
	}
	view := models.CollectionView{
		ID:        &c.ID,
		ToolIDs:   c.ToolIDs,
		CreatedAt: &c.CreatedAt,
	}
	if view.ToolIDs == nil {
		view.ToolIDs = []string{}
	}
	return view
}
