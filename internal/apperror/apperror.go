// Package apperror defines the error kinds the service layer hands to HTTP
// handlers. Handlers match them with errors.Is and map them to status codes.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // safe to show to clients
	Field   string // optional: offending input field
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UnknownTools reports tool ids that are not in the catalog.
func UnknownTools(field string, ids []string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Unknown tool ids: " + strings.Join(ids, ", "),
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}
