package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
)

const serviceName = "openweather"

// Client implements domain.WeatherProvider using the OpenWeather current
// weather API with Korean descriptions and metric units.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. An empty apiKey yields a client
// that reports weather as unavailable without making requests.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

type response struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Name string `json:"name"`
}

// Current returns the current conditions for city.
func (c *Client) Current(ctx context.Context, city string) (report domain.WeatherReport, err error) {
	if c.apiKey == "" {
		return domain.WeatherUnavailable("no api key configured"), nil
	}
	if city == "" {
		return domain.WeatherUnavailable("no city"), nil
	}

	start := time.Now()
	defer func() { c.metrics.ObserveAPI(serviceName, start, err) }()

	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"lang":  {"kr"},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.WeatherReport{}, &domain.APIError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("decode response: %w", err)
	}
	if len(r.Weather) == 0 {
		return domain.WeatherReport{}, errors.New("weather response has no conditions")
	}

	c.logger.Debug("weather fetched", "city", city, "description", r.Weather[0].Description)

	return domain.WeatherReport{
		Available:   true,
		Description: r.Weather[0].Description,
		TempC:       r.Main.Temp,
		Humidity:    r.Main.Humidity,
	}, nil
}
