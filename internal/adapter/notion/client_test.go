package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/couchcryptid/sunspot-archive-service/internal/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "secret_test"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(testToken, baseURL, 5*time.Second, observability.NewUnregisteredMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_CreatePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pages", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get("Notion-Version"))
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"database_id": "db-1"}, body["parent"])

		props := body["properties"].(map[string]any)
		assert.JSONEq(t, `{"title":[{"text":{"content":"Kim"}}]}`, mustJSON(t, props["이름"]))
		assert.JSONEq(t, `{"date":{"start":"2024-04-26"}}`, mustJSON(t, props["관측 날짜"]))
		assert.JSONEq(t, `{"number":0}`, mustJSON(t, props["흑점 개수"]))
		assert.JSONEq(t, `{"rich_text":[{"text":{"content":"맑음 ☀️"}}]}`, mustJSON(t, props["날씨"]))

		children := body["children"].([]any)
		require.Len(t, children, 1)
		assert.JSONEq(t,
			`{"object":"block","type":"heading_2","heading_2":{"rich_text":[{"type":"text","text":{"content":"🌞 slot"}}]}}`,
			mustJSON(t, children[0]))

		writeJSON(t, w, map[string]any{"object": "page", "id": "1a2b-3c4d"})
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).CreatePage(context.Background(), "db-1", []domain.Property{
		{Name: "이름", Kind: domain.PropertyTitle, Text: "Kim"},
		{Name: "관측 날짜", Kind: domain.PropertyDate, Text: "2024-04-26"},
		{Name: "흑점 개수", Kind: domain.PropertyNumber, Number: 0},
		{Name: "날씨", Kind: domain.PropertyRichText, Text: "맑음 ☀️"},
	}, []domain.Block{domain.Heading2("🌞 slot")})
	require.NoError(t, err)
	assert.Equal(t, "1a2b-3c4d", id)
}

func TestClient_CreatePage_NoChildrenOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "children")
		writeJSON(t, w, map[string]any{"id": "page-1"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreatePage(context.Background(), "db-1", nil, nil)
	require.NoError(t, err)
}

func TestClient_ListChildren(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/blocks/page-1/children", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		assert.Equal(t, "cur-1", r.URL.Query().Get("start_cursor"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"object": "list",
			"results": [
				{"object":"block","id":"h1","type":"heading_2","heading_2":{"rich_text":[{"type":"text","text":{"content":"🌞 original"},"plain_text":"🌞 original"}]}},
				{"object":"block","id":"p1","type":"paragraph","paragraph":{"rich_text":[]}},
				{"object":"block","id":"h2","type":"heading_2","heading_2":{"rich_text":[{"type":"mention","plain_text":"@Kim"}]}},
				{"object":"block","id":"i1","type":"image","image":{"type":"external","external":{"url":"https://i.imgur.com/a.jpg"}}},
				{"object":"block","id":"d1","type":"divider","divider":{}}
			],
			"next_cursor": "cur-2",
			"has_more": true
		}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).ListChildren(context.Background(), "page-1", "cur-1")
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-2", page.NextCursor)
	require.Len(t, page.Blocks, 5)

	text, ok := page.Blocks[0].FirstRun()
	assert.True(t, ok)
	assert.Equal(t, "🌞 original", text)
	assert.Equal(t, "h1", page.Blocks[0].ID)

	_, ok = page.Blocks[1].FirstRun()
	assert.False(t, ok)

	text, _ = page.Blocks[2].FirstRun()
	assert.Equal(t, "@Kim", text)

	assert.Equal(t, "https://i.imgur.com/a.jpg", page.Blocks[3].ImageURL)
	assert.Equal(t, "divider", page.Blocks[4].Type)
}

func TestClient_ListChildren_FirstPageHasNoCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("start_cursor"))
		writeJSON(t, w, map[string]any{"results": []any{}, "next_cursor": nil, "has_more": false})
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).ListChildren(context.Background(), "page-1", "")
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	assert.Empty(t, page.Blocks)
}

func TestClient_AppendChildren(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/blocks/h1/children", r.URL.Path)

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"children":[{"object":"block","type":"image","image":{"type":"external","external":{"url":"https://i.imgur.com/orig.jpg"}}}]}`, string(data))

		writeJSON(t, w, map[string]any{"object": "list", "results": []any{}})
	}))
	defer srv.Close()

	err := testClient(srv.URL).AppendChildren(context.Background(), "h1",
		[]domain.Block{domain.ExternalImage("https://i.imgur.com/orig.jpg")})
	require.NoError(t, err)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreatePage(context.Background(), "db-1", nil, nil)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "notion", apiErr.Service)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ListChildren(context.Background(), "page-1", "")
	require.Error(t, err)
}

// TestClient_SlotLookupAcrossPages runs the slot locator against the REST
// client to check cursor handling end to end.
func TestClient_SlotLookupAcrossPages(t *testing.T) {
	var appended []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("start_cursor") == "":
			writeJSON(t, w, map[string]any{
				"results":     []any{map[string]any{"id": "p1", "type": "paragraph", "paragraph": map[string]any{"rich_text": []any{}}}},
				"next_cursor": "next",
				"has_more":    true,
			})
		case r.Method == http.MethodGet:
			writeJSON(t, w, map[string]any{
				"results": []any{map[string]any{"id": "h9", "type": "heading_2", "heading_2": map[string]any{
					"rich_text": []any{map[string]any{"type": "text", "text": map[string]any{"content": "🤖 AI result"}}},
				}}},
				"next_cursor": nil,
				"has_more":    false,
			})
		case r.Method == http.MethodPatch:
			appended = append(appended, r.URL.Path)
			writeJSON(t, w, map[string]any{"results": []any{}})
		}
	}))
	defer srv.Close()

	p := slot.New(testClient(srv.URL))

	id, found, err := p.FindHeadingBlock(context.Background(), "page-1", "🤖")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h9", id)

	require.NoError(t, p.AttachImage(context.Background(), id, "https://i.imgur.com/r.jpg"))
	assert.Equal(t, []string{"/blocks/h9/children"}, appended)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
