package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/testutil"
)

type collectionResponse struct {
	Data models.CollectionView `json:"data"`
}

func TestGetCollectionHandler_EmptyForNewCaller(t *testing.T) {
	env := setupHandlerTest(t)

	rr := env.do(t, http.MethodGet, "/api/collections", nil)
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertContains(t, rr.Body.String(), `"id":null`)
	testutil.AssertContains(t, rr.Body.String(), `"toolIds":[]`)
	testutil.AssertContains(t, rr.Body.String(), `"createdAt":null`)
}

func TestSaveCollectionHandler_RoundTrip(t *testing.T) {
	env := setupHandlerTest(t)

	rr := env.do(t, http.MethodPut, "/api/collections", map[string][]string{
		"toolIds": {"figma", " notion ", "figma"},
	})
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertHeader(t, rr, "X-RateLimit-Limit", "20")

	var saved collectionResponse
	testutil.DecodeJSON(t, rr, &saved)
	if saved.Data.ID == nil {
		t.Fatal("saved collection has no id")
	}
	if got := strings.Join(saved.Data.ToolIDs, ","); got != "figma,notion" {
		t.Errorf("toolIds = %s, want figma,notion", got)
	}

	rr = env.do(t, http.MethodGet, "/api/collections", nil)
	var loaded collectionResponse
	testutil.DecodeJSON(t, rr, &loaded)
	if loaded.Data.ID == nil || *loaded.Data.ID != *saved.Data.ID {
		t.Errorf("loaded id = %v, want %d", loaded.Data.ID, *saved.Data.ID)
	}
	if got := strings.Join(loaded.Data.ToolIDs, ","); got != "figma,notion" {
		t.Errorf("loaded toolIds = %s, want figma,notion", got)
	}
}

func TestSaveCollectionHandler_Validation(t *testing.T) {
	env := setupHandlerTest(t)

	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("tool-%d", i)
	}

	tests := []struct {
		name        string
		body        interface{}
		wantMessage string
		wantLimited bool
	}{
		{"missing toolIds", map[string]string{}, "toolIds is required", false},
		{"too many", map[string][]string{"toolIds": tooMany}, "Cannot save more than 50 tools", false},
		{"blank id", map[string][]string{"toolIds": {"notion", ""}}, "Tool ID cannot be empty", false},
		{"unknown id", map[string][]string{"toolIds": {"notion", "ghost"}}, "Unknown tool ids: ghost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPut, "/api/collections", tt.body)
			testutil.AssertStatusCode(t, rr, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.DecodeJSON(t, rr, &resp)
			if resp.Error != tt.wantMessage {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMessage)
			}

			limited := rr.Header().Get("X-RateLimit-Limit") != ""
			if limited != tt.wantLimited {
				t.Errorf("rate limit headers present = %v, want %v", limited, tt.wantLimited)
			}
		})
	}
}

func TestShareCollectionHandler_Deduplicates(t *testing.T) {
	env := setupHandlerTest(t)

	rr := env.do(t, http.MethodPost, "/api/collections/share", map[string][]string{
		"toolIds": {"figma", "notion", "obsidian"},
	})
	testutil.AssertStatusCode(t, rr, http.StatusOK)

	var first models.ShareResponse
	testutil.DecodeJSON(t, rr, &first)
	if first.Cached {
		t.Error("first share cached = true, want false")
	}
	if first.URL != testPublicURL+"/collection/"+first.ID {
		t.Errorf("url = %s, want %s/collection/%s", first.URL, testPublicURL, first.ID)
	}

	rr = env.do(t, http.MethodPost, "/api/collections/share", map[string][]string{
		"toolIds": {"obsidian", "figma", "notion", "figma"},
	})
	testutil.AssertStatusCode(t, rr, http.StatusOK)

	var second models.ShareResponse
	testutil.DecodeJSON(t, rr, &second)
	if !second.Cached || second.ID != first.ID {
		t.Errorf("second share = %+v, want cached with id %s", second, first.ID)
	}

	rr = env.do(t, http.MethodGet, "/api/collections/share/"+first.ID, nil)
	testutil.AssertStatusCode(t, rr, http.StatusOK)

	var shared struct {
		Data models.SharedCollectionView `json:"data"`
	}
	testutil.DecodeJSON(t, rr, &shared)
	if got := strings.Join(shared.Data.ToolIDs, ","); got != "obsidian,figma,notion" {
		t.Errorf("stored order = %s, want latest order obsidian,figma,notion", got)
	}
	if len(shared.Data.Tools) != 3 || shared.Data.Tools[0].ID != "obsidian" {
		t.Errorf("tools = %+v, want resolved in stored order", shared.Data.Tools)
	}
}

func TestShareCollectionHandler_Errors(t *testing.T) {
	env := setupHandlerTest(t)

	rr := env.do(t, http.MethodPost, "/api/collections/share", map[string][]string{"toolIds": {}})
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)

	rr = env.do(t, http.MethodPost, "/api/collections/share", map[string][]string{"toolIds": {"ghost"}})
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertContains(t, rr.Body.String(), "ghost")

	rr = env.do(t, http.MethodGet, "/api/collections/share/does-not-exist", nil)
	testutil.AssertStatusCode(t, rr, http.StatusNotFound)
}

func TestBuildShareURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		headers   map[string]string
		want      string
	}{
		{"public url wins", "https://tools.example.com", map[string]string{"X-Forwarded-Host": "proxy"}, "https://tools.example.com/collection/abc"},
		{"request host", "", nil, "http://example.com/collection/abc"},
		{"forwarded headers", "", map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "tools.io"}, "https://tools.io/collection/abc"},
		{"bogus proto ignored", "", map[string]string{"X-Forwarded-Proto": "gopher"}, "http://example.com/collection/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "http://example.com/api/collections/share", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := buildShareURL(req, tt.publicURL, "abc"); got != tt.want {
				t.Errorf("buildShareURL() = %s, want %s", got, tt.want)
			}
		})
	}
}
