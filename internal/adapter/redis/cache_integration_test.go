//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestWeatherCache_Redis(t *testing.T) {
	client := NewClient(startRedis(t), 2*time.Second)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	inner := &countingProvider{report: domain.WeatherReport{Available: true, Description: "맑음", TempC: 18, Humidity: 50}}
	metrics := observability.NewUnregisteredMetrics()
	cache := NewWeatherCache(client, inner, time.Minute, metrics, discardLogger())

	first, err := cache.Current(ctx, "Seoul")
	require.NoError(t, err)
	second, err := cache.Current(ctx, "seoul")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.WeatherCache.WithLabelValues("redis", "hit")), 0)

	ttl, err := client.TTL(ctx, cacheKey("Seoul")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	require.NoError(t, cache.Ping(ctx))
}

func TestWeatherCache_Redis_UnavailableNotStored(t *testing.T) {
	client := NewClient(startRedis(t), 2*time.Second)
	defer client.Close()

	ctx := context.Background()
	inner := &countingProvider{report: domain.WeatherUnavailable("no api key configured")}
	cache := NewWeatherCache(client, inner, time.Minute, nil, discardLogger())

	_, _ = cache.Current(ctx, "Seoul")
	_, _ = cache.Current(ctx, "Seoul")
	assert.Equal(t, 2, inner.calls)

	n, err := client.Exists(ctx, cacheKey("Seoul")).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
