package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/memory"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sunspot-archive-service/internal/config"
	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ipinfoServer(t *testing.T, city string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"city":"` + city + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildApp_DryRunWithLedger(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "ledger.sqlite")
	cfg := &config.Config{
		Location:            time.UTC,
		HTTPClientTimeout:   time.Second,
		NotionDatabaseID:    "db-1",
		WeatherBaseURL:      "http://127.0.0.1:1",
		WeatherCacheSize:    8,
		WeatherCacheTTL:     time.Minute,
		WeatherFallbackText: "알 수 없음",
		DefaultCity:         "Seoul",
		IPInfoURL:           ipinfoServer(t, "Incheon").URL,
		LedgerPath:          ledgerPath,
	}
	b, store, err := dryRunBackends(cfg)
	require.NoError(t, err)

	a, err := buildApp(cfg, b, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewUnregisteredMetrics())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.pipeline.CheckReadiness(context.Background()))

	res, err := a.pipeline.Submit(context.Background(), domain.Submission{Name: "Kim", Image: []byte("photo")})
	require.NoError(t, err)
	assert.Equal(t, "Incheon", res.Observation.Location)
	assert.False(t, res.Observation.Weather.Available)
	assert.True(t, res.Archived.Slots.OriginalAttached)

	_, ok := store.Page(res.Archived.PageID)
	assert.True(t, ok)
	require.NoError(t, a.Close())

	l, err := sqlite.Open(ledgerPath)
	require.NoError(t, err)
	defer l.Close()
	entries, err := l.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusArchived, entries[0].Status)
}

func TestBuildApp_BadSchemaFile(t *testing.T) {
	cfg := &config.Config{NotionSchemaFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := buildApp(cfg, backends{store: memory.NewStore(), images: memory.NewImages()},
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.Error(t, err)
}

func TestSubmitCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "sun.jpg")
	outPath := filepath.Join(dir, "out.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("photo"), 0o600))

	t.Setenv("NOTION_API_KEY", "")
	t.Setenv("IMGUR_CLIENT_ID", "")
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("DETECTOR_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LEDGER_PATH", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("IPINFO_URL", ipinfoServer(t, "Gwangju").URL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"submit", "--dry-run", "--image", imagePath, "--name", "Kim", "--memo", "clear", "-o", outPath})
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "https://www.notion.so/")
	assert.Contains(t, text, "✅ 기록 저장 완료")
	assert.Contains(t, text, "Gwangju")
	assert.Contains(t, text, "이름: Kim")
	assert.Contains(t, text, "[image] memory://images/")

	annotated, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("photo"), annotated)
}
