package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/detector"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/imgur"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/ipinfo"
	kafkaadapter "github.com/couchcryptid/sunspot-archive-service/internal/adapter/kafka"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/notion"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/openweather"
	redisadapter "github.com/couchcryptid/sunspot-archive-service/internal/adapter/redis"
	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sunspot-archive-service/internal/archive"
	"github.com/couchcryptid/sunspot-archive-service/internal/config"
	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/couchcryptid/sunspot-archive-service/internal/pipeline"
)

// app is a wired pipeline plus the resources to release on exit.
type app struct {
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// backends are the document and image stores; production uses Notion and
// Imgur, dry runs use memory.
type backends struct {
	store  domain.DocumentStore
	images domain.ImageStore
}

func remoteBackends(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) backends {
	return backends{
		store:  notion.NewClient(cfg.NotionAPIKey, cfg.NotionBaseURL, cfg.HTTPClientTimeout, metrics, logger),
		images: imgur.NewClient(cfg.ImgurClientID, cfg.ImgurBaseURL, cfg.HTTPClientTimeout, metrics, logger),
	}
}

func buildApp(cfg *config.Config, b backends, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	a := &app{}

	schema, err := archive.LoadSchema(cfg.NotionSchemaFile)
	if err != nil {
		return nil, err
	}

	stages := pipeline.Stages{
		Images:   b.images,
		Locator:  ipinfo.NewClient(cfg.IPInfoURL, cfg.HTTPClientTimeout, metrics, logger),
		Archiver: archive.New(b.store, cfg.NotionDatabaseID, schema, cfg.WeatherFallbackText, logger, metrics),
	}
	var checks []pipeline.Check

	// Weather lookups go memory LRU, then Redis when configured, then the API.
	var weather domain.WeatherProvider = openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.HTTPClientTimeout, metrics, logger)
	if cfg.RedisAddr != "" {
		client := redisadapter.NewClient(cfg.RedisAddr, cfg.HTTPClientTimeout)
		rc := redisadapter.NewWeatherCache(client, weather, cfg.WeatherCacheTTL, metrics, logger)
		weather = rc
		checks = append(checks, pipeline.Check{Name: "redis", Ping: rc.Ping})
		a.closers = append(a.closers, client.Close)
		logger.Info("redis weather cache enabled", "addr", cfg.RedisAddr)
	}
	stages.Weather = openweather.NewCachedProvider(weather, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, metrics)
	if cfg.WeatherAPIKey == "" {
		logger.Warn("WEATHER_API_KEY not set, weather will be recorded as unavailable")
	}

	if cfg.DetectorEnabled {
		stages.Detector = detector.NewClient(cfg.DetectorURL, cfg.HTTPClientTimeout, metrics, logger)
		logger.Info("sunspot detection enabled", "url", cfg.DetectorURL)
	} else {
		logger.Info("sunspot detection disabled")
	}

	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		stages.Publisher = w
		checks = append(checks, pipeline.Check{Name: "kafka", Ping: w.Ping})
		a.closers = append(a.closers, w.Close)
		logger.Info("event publishing enabled", "topic", cfg.KafkaTopic)
	}

	if cfg.LedgerPath != "" {
		l, err := sqlite.Open(cfg.LedgerPath)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		stages.Ledger = l
		checks = append(checks, pipeline.Check{Name: "ledger", Ping: l.Ping})
		a.closers = append(a.closers, l.Close)
	}

	a.pipeline = pipeline.New(stages, pipeline.Settings{
		Location:    cfg.Location,
		DefaultCity: cfg.DefaultCity,
	}, logger, metrics, checks...)
	return a, nil
}
