package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iecho/tooldir/internal/apperror"
	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/fingerprint"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (c *contactRequest) validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)

	if c.Name == "" {
		return apperror.ValidationFailed("name", "Name is required")
	}
	if utf8.RuneCountInString(c.Name) > 120 {
		return apperror.ValidationFailed("name", "Name must be at most 120 characters")
	}
	if !validEmail(c.Email) {
		return apperror.ValidationFailed("email", "Email must be valid")
	}
	n := utf8.RuneCountInString(c.Message)
	if n < 5 {
		return apperror.ValidationFailed("message", "Message must be at least 5 characters")
	}
	if n > 2000 {
		return apperror.ValidationFailed("message", "Message must be at most 2000 characters")
	}
	return nil
}

// validEmail accepts a bare address with a dotted domain
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// ContactHandler stores a contact form submission and answers 202
func ContactHandler(contacts repository.ContactRepository, guard *RateGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(w, r, &req); err != nil {
			sendAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			sendAppError(w, r, err)
			return
		}

		if !guard.Allow(w, r, config.ActionContact, fingerprint.FromRequest(r)) {
			return
		}

		contact := &models.Contact{
			ID:      uuid.NewString(),
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
			Status:  models.ContactStatusNew,
		}
		if err := contacts.Create(r.Context(), contact); err != nil {
			sendAppError(w, r, err)
			return
		}

		sendJSON(w, http.StatusAccepted, models.DataResponse{Data: models.ContactReceipt{
			ID:        contact.ID,
			CreatedAt: contact.CreatedAt,
		}})
	}
}
