package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	Location        *time.Location

	// Outbound API settings.
	HTTPClientTimeout time.Duration

	NotionAPIKey     string
	NotionDatabaseID string
	NotionBaseURL    string
	NotionSchemaFile string

	ImgurClientID string
	ImgurBaseURL  string

	WeatherAPIKey       string
	WeatherBaseURL      string
	WeatherCacheSize    int
	WeatherCacheTTL     time.Duration
	WeatherFallbackText string
	DefaultCity         string
	IPInfoURL           string

	// Detection is feature-flagged via DETECTOR_URL.
	DetectorURL     string
	DetectorEnabled bool

	// Optional infrastructure; empty disables the component.
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
	LedgerPath   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.requireCredentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDryRun is Load without the Notion and Imgur credential checks, for
// runs that archive into memory.
func LoadDryRun() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	clientTimeout, err := parsePositiveDuration("HTTP_CLIENT_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	maxUpload, err := parsePositiveInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("WEATHER_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	tz := sharedcfg.EnvOrDefault("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	detectorURL := os.Getenv("DETECTOR_URL")
	detectorEnabled := detectorURL != ""
	if v := os.Getenv("DETECTOR_ENABLED"); v != "" {
		detectorEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MaxUploadBytes:  int64(maxUpload),
		Location:        loc,

		HTTPClientTimeout: clientTimeout,

		NotionAPIKey:     os.Getenv("NOTION_API_KEY"),
		NotionDatabaseID: os.Getenv("NOTION_DB_ID"),
		NotionBaseURL:    sharedcfg.EnvOrDefault("NOTION_BASE_URL", "https://api.notion.com/v1"),
		NotionSchemaFile: os.Getenv("NOTION_SCHEMA_FILE"),

		ImgurClientID: os.Getenv("IMGUR_CLIENT_ID"),
		ImgurBaseURL:  sharedcfg.EnvOrDefault("IMGUR_BASE_URL", "https://api.imgur.com/3"),

		WeatherAPIKey:       os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:      sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherCacheSize:    cacheSize,
		WeatherCacheTTL:     cacheTTL,
		WeatherFallbackText: sharedcfg.EnvOrDefault("WEATHER_FALLBACK_TEXT", "알 수 없음"),
		DefaultCity:         sharedcfg.EnvOrDefault("DEFAULT_CITY", "Seoul"),
		IPInfoURL:           sharedcfg.EnvOrDefault("IPINFO_URL", "https://ipinfo.io/json"),

		DetectorURL:     detectorURL,
		DetectorEnabled: detectorEnabled,

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sunspot-observations"),
		KafkaEnabled: len(brokers) > 0,
		LedgerPath:   os.Getenv("LEDGER_PATH"),
	}

	if cfg.DetectorEnabled && cfg.DetectorURL == "" {
		return nil, errors.New("DETECTOR_ENABLED is true but DETECTOR_URL is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func (c *Config) requireCredentials() error {
	if c.NotionAPIKey == "" {
		return errors.New("NOTION_API_KEY is required")
	}
	if c.NotionDatabaseID == "" {
		return errors.New("NOTION_DB_ID is required")
	}
	if c.ImgurClientID == "" {
		return errors.New("IMGUR_CLIENT_ID is required")
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
