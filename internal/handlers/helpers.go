package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 * 1024

// sendJSON writes v as a JSON response with the given status
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// sendError sends a JSON error response
func sendError(w http.ResponseWriter, message, code string, status int) {
	sendJSON(w, status, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// sendAppError maps service errors to HTTP responses. Anything that is not an
// AppError is logged and reported as a generic 500.
func sendAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp := models.ErrorResponse{Error: appErr.Message, Field: appErr.Field}
		status := http.StatusInternalServerError
		switch {
		case errors.Is(appErr, apperror.ErrNotFound):
			resp.Code, status = "NOT_FOUND", http.StatusNotFound
		case errors.Is(appErr, apperror.ErrValidation):
			resp.Code, status = "VALIDATION_ERROR", http.StatusBadRequest
		case errors.Is(appErr, apperror.ErrConflict):
			resp.Code, status = "CONFLICT", http.StatusConflict
		default:
			resp.Code = "INTERNAL_ERROR"
		}
		sendJSON(w, status, resp)
		return
	}

	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	metrics.ErrorsTotal.WithLabelValues("internal").Inc()
	sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields
// and trailing data. Errors are returned as validation AppErrors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("", "Request body too large")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return apperror.ValidationFailed(field, fmt.Sprintf("Unrecognized field %q", field))
		default:
			return apperror.ValidationFailed("", "Invalid JSON payload")
		}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperror.ValidationFailed("", "Invalid JSON payload")
	}
	return nil
}

// buildShareURL constructs the public URL of a shared collection
// Respects PUBLIC_URL config and reverse proxy headers
func buildShareURL(r *http.Request, publicURL, id string) string {
	if publicURL != "" {
		return publicURL + "/collection/" + id
	}
	return getScheme(r) + "://" + getHost(r) + "/collection/" + id
}

// getScheme returns the scheme (http/https) respecting reverse proxy headers
func getScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// getHost returns the host respecting reverse proxy headers
func getHost(r *http.Request) string {
	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		return host
	}
	return r.Host
}

// NotFoundHandler answers unmatched routes with a JSON 404
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	sendError(w, "Not found", "NOT_FOUND", http.StatusNotFound)
}

// MethodNotAllowedHandler answers known routes hit with the wrong method
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
}
