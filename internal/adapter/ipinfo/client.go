package ipinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
)

const serviceName = "ipinfo"

// Client implements domain.IPLocator using the ipinfo.io lookup of the
// caller's own address.
type Client struct {
	httpClient *http.Client
	url        string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an ipinfo client for the given lookup URL.
func NewClient(lookupURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:     lookupURL,
		metrics: metrics,
		logger:  logger,
	}
}

type response struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// City returns the city the server's public address geolocates to.
func (c *Client) City(ctx context.Context) (city string, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveAPI(serviceName, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.APIError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if r.City == "" {
		return "", errors.New("ip lookup returned no city")
	}

	c.logger.Debug("located by ip", "city", r.City, "country", r.Country)
	return r.City, nil
}
