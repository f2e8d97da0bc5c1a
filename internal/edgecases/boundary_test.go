package edgecases

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iecho/tooldir/internal/models"
)

func repeatID(id string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = id
	}
	return ids
}

// TestCollectionSizeBoundary checks the limit applies to the raw list, before
// duplicates are removed.
func TestCollectionSizeBoundary(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	rr := request(t, router, "PUT", "/api/collections", mustJSON(t, map[string][]string{"toolIds": repeatID("notion", 50)}))
	if rr.Code != 200 {
		t.Fatalf("50 ids: status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var saved struct {
		Data models.CollectionView `json:"data"`
	}
	json.NewDecoder(rr.Body).Decode(&saved)
	if len(saved.Data.ToolIDs) != 1 {
		t.Errorf("saved ToolIDs = %v, want duplicates collapsed to one", saved.Data.ToolIDs)
	}

	rr = request(t, router, "PUT", "/api/collections", mustJSON(t, map[string][]string{"toolIds": repeatID("notion", 51)}))
	if rr.Code != 400 {
		t.Errorf("51 ids: status = %d, want 400", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Field != "toolIds" {
		t.Errorf("51 ids: field = %q, want toolIds", resp.Field)
	}
}

func TestShareSizeBoundary(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	rr := request(t, router, "POST", "/api/collections/share", mustJSON(t, map[string][]string{"toolIds": repeatID("figma", 51)}))
	if rr.Code != 400 {
		t.Errorf("51 ids: status = %d, want 400", rr.Code)
	}

	rr = request(t, router, "POST", "/api/collections/share", mustJSON(t, map[string][]string{"toolIds": {"figma", "ghost"}}))
	if rr.Code != 400 {
		t.Errorf("unknown id: status = %d, want 400", rr.Code)
	}
	if resp := decodeError(t, rr); !strings.Contains(resp.Error, "ghost") {
		t.Errorf("unknown id: error %q should name the missing id", resp.Error)
	}
}

func TestPaginationBoundaries(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	tests := []struct {
		query    string
		wantCode int
		wantPage int
	}{
		{"limit=1", 200, 1},
		{"limit=100", 200, 1},
		{"limit=101", 400, 0},
		{"limit=0", 400, 0},
		{"page=0", 400, 0},
		{"page=-3", 400, 0},
		{"page=abc", 400, 0},
		{"page=999&limit=3", 200, 2},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := request(t, router, "GET", "/api/tools?"+tt.query, nil)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode != 200 {
				return
			}
			var resp models.ToolListResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Pagination.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", resp.Pagination.Page, tt.wantPage)
			}
		})
	}
}

func TestSearchLimitBoundary(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	if rr := request(t, router, "GET", "/api/tools/search?q=no&limit=50", nil); rr.Code != 200 {
		t.Errorf("limit=50: status = %d, want 200", rr.Code)
	}
	if rr := request(t, router, "GET", "/api/tools/search?q=no&limit=51", nil); rr.Code != 400 {
		t.Errorf("limit=51: status = %d, want 400", rr.Code)
	}
	if rr := request(t, router, "GET", "/api/tools/search?q=%20%20", nil); rr.Code != 400 {
		t.Errorf("blank q: status = %d, want 400", rr.Code)
	}
}

// TestEmptyCatalog checks listings still report one page.
func TestEmptyCatalog(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	rr := request(t, router, "GET", "/api/tools?category=no-such-category", nil)
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp models.ToolListResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Pagination.Total != 0 || resp.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v, want total 0 and one page", resp.Pagination)
	}
	if resp.Data == nil {
		t.Error("data should be an empty list, not null")
	}
}

func TestContactFieldBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"name at 120 runes", map[string]string{"name": strings.Repeat("é", 120), "email": "a@example.com", "message": "Hello"}, 202},
		{"name at 121 runes", map[string]string{"name": strings.Repeat("é", 121), "email": "a@example.com", "message": "Hello"}, 400},
		{"message at 5 chars", map[string]string{"name": "Ann", "email": "a@example.com", "message": "12345"}, 202},
		{"message at 4 chars", map[string]string{"name": "Ann", "email": "a@example.com", "message": "1234"}, 400},
		{"message padded to 4", map[string]string{"name": "Ann", "email": "a@example.com", "message": "  1234  "}, 400},
		{"message at 2000 chars", map[string]string{"name": "Ann", "email": "a@example.com", "message": strings.Repeat("m", 2000)}, 202},
		{"message at 2001 chars", map[string]string{"name": "Ann", "email": "a@example.com", "message": strings.Repeat("m", 2001)}, 400},
		{"email with display name", map[string]string{"name": "Ann", "email": "Ann <a@example.com>", "message": "Hello"}, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fresh router per case so the contact budget is never the reason for a failure.
			router := newRouter(t, seededSQLite(t), nil)
			rr := request(t, router, "POST", "/api/contact", mustJSON(t, tt.body))
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestRequestBodyBoundaries(t *testing.T) {
	router := newRouter(t, seededSQLite(t), nil)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty body", "", ""},
		{"not json", "toolId=notion", ""},
		{"trailing document", `{"toolId":"notion"}{"toolId":"figma"}`, ""},
		{"unknown field", `{"toolId":"notion","extra":1}`, "extra"},
		{"wrong type", `{"toolId":42}`, ""},
		{"oversized", fmt.Sprintf(`{"toolId":"%s"}`, strings.Repeat("x", 70*1024)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := request(t, router, "POST", "/api/upvote", []byte(tt.body))
			if rr.Code != 400 {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Code != "VALIDATION_ERROR" {
				t.Errorf("code = %q, want VALIDATION_ERROR", resp.Code)
			}
			if tt.wantField != "" && resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}
