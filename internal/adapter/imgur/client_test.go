package imgur

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
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123"

func testClient(baseURL string) *Client {
	return NewClient(testClientID, baseURL, 5*time.Second, observability.NewUnregisteredMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Upload_Success(t *testing.T) {
	image := []byte("\xff\xd8\xff\xe0 fake jpeg")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/image", r.URL.Path)
		assert.Equal(t, "Client-ID "+testClientID, r.Header.Get("Authorization"))

		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, image, got)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"data":    map[string]any{"id": "abc", "link": "https://i.imgur.com/abc.jpg"},
			"success": true,
			"status":  200,
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	link, err := c.Upload(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/abc.jpg", link)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.APIRequests.WithLabelValues("imgur", "success")), 0)
}

func TestClient_Upload_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"data":{"error":"Invalid client_id"},"success":false,"status":403}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Upload(context.Background(), []byte("img"))
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid client_id")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.APIRequests.WithLabelValues("imgur", "error")), 0)
}

func TestClient_Upload_MissingLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"success":true,"status":200}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Upload(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no link")
}

func TestClient_Upload_EmptyImage(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Upload(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, called)
}

func TestClient_Upload_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Upload(ctx, []byte("img"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
