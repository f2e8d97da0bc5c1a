package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/testutil"
)

func validContact() map[string]string {
	return map[string]string{
		"name":    "  Ada Lovelace ",
		"email":   "ada@example.com",
		"message": "Please list my tool.",
	}
}

func TestContactHandler_Accepted(t *testing.T) {
	env := setupHandlerTest(t)

	rr := env.do(t, http.MethodPost, "/api/contact", validContact())
	testutil.AssertStatusCode(t, rr, http.StatusAccepted)
	testutil.AssertHeader(t, rr, "X-RateLimit-Limit", "5")
	testutil.AssertHeader(t, rr, "X-RateLimit-Remaining", "4")

	var resp struct {
		Data models.ContactReceipt `json:"data"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if _, err := uuid.Parse(resp.Data.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", resp.Data.ID, err)
	}
	if resp.Data.CreatedAt.IsZero() {
		t.Error("createdAt is zero")
	}
}

func TestContactHandler_Validation(t *testing.T) {
	env := setupHandlerTest(t)

	tests := []struct {
		name      string
		mutate    func(map[string]string)
		wantField string
	}{
		{"blank name", func(m map[string]string) { m["name"] = "   " }, "name"},
		{"long name", func(m map[string]string) { m["name"] = strings.Repeat("a", 121) }, "name"},
		{"bad email", func(m map[string]string) { m["email"] = "not-an-email" }, "email"},
		{"display name email", func(m map[string]string) { m["email"] = "Ada <ada@example.com>" }, "email"},
		{"short message", func(m map[string]string) { m["message"] = " hi  " }, "message"},
		{"long message", func(m map[string]string) { m["message"] = strings.Repeat("x", 2001) }, "message"},
		{"unknown field", func(m map[string]string) { m["phone"] = "123" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validContact()
			tt.mutate(body)

			rr := env.do(t, http.MethodPost, "/api/contact", body)
			testutil.AssertStatusCode(t, rr, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.DecodeJSON(t, rr, &resp)
			if resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}

func TestContactHandler_RateLimited(t *testing.T) {
	env := setupHandlerTest(t)

	for i := 0; i < 5; i++ {
		rr := env.do(t, http.MethodPost, "/api/contact", validContact())
		testutil.AssertStatusCode(t, rr, http.StatusAccepted)
	}

	rr := env.do(t, http.MethodPost, "/api/contact", validContact())
	testutil.AssertStatusCode(t, rr, http.StatusTooManyRequests)
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing on 429")
	}

	// Other actions keep their own budget.
	rr = env.do(t, http.MethodPost, "/api/upvote", map[string]string{"toolId": "notion"})
	testutil.AssertStatusCode(t, rr, http.StatusOK)

}
