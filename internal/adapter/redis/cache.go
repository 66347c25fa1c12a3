package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "sunspot:weather:"

// WeatherCache is a WeatherProvider decorator that shares reports between
// service instances through Redis. Redis failures are logged and the lookup
// falls through to the wrapped provider.
type WeatherCache struct {
	client  *goredis.Client
	inner   domain.WeatherProvider
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient connects a go-redis client to addr. The connection is lazy.
func NewClient(addr string, timeout time.Duration) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// NewWeatherCache wraps inner with a Redis-backed TTL cache.
func NewWeatherCache(client *goredis.Client, inner domain.WeatherProvider, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *WeatherCache {
	return &WeatherCache{
		client:  client,
		inner:   inner,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func cacheKey(city string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(city))
}

func (c *WeatherCache) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	key := cacheKey(city)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var report domain.WeatherReport
		if jsonErr := json.Unmarshal(data, &report); jsonErr == nil {
			c.record("hit")
			return report, nil
		}
		c.logger.Warn("discarding corrupt weather cache entry", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.logger.Warn("weather cache read failed", "key", key, "error", err)
	}
	c.record("miss")

	report, err := c.inner.Current(ctx, city)
	if err != nil || !report.Available {
		return report, err
	}

	data, err = json.Marshal(report)
	if err != nil {
		return report, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("weather cache write failed", "key", key, "error", err)
	}
	return report, nil
}

// Ping reports whether Redis is reachable.
func (c *WeatherCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *WeatherCache) record(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.WeatherCache.WithLabelValues("redis", result).Inc()
}
