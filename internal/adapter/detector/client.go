package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
)

const serviceName = "detector"

// Client implements domain.Detector against a model server that accepts an
// image upload and answers with a JSON array of xyxy boxes.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a detector client for the inference endpoint at url.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Detect runs the model on image and returns the boxes along with a JPEG
// rendering of the image with every box drawn in.
func (c *Client) Detect(ctx context.Context, image []byte) (domain.Detection, error) {
	img, err := decodeImage(image)
	if err != nil {
		return domain.Detection{}, err
	}

	boxes, err := c.infer(ctx, image)
	if err != nil {
		return domain.Detection{}, err
	}

	rendered, err := render(img, boxes)
	if err != nil {
		return domain.Detection{}, err
	}

	c.logger.Debug("detection complete", "boxes", len(boxes))
	return domain.Detection{Boxes: boxes, Rendered: rendered}, nil
}

func (c *Client) infer(ctx context.Context, image []byte) (boxes []domain.Box, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveAPI(serviceName, start, err) }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "image")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.APIError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(&boxes); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	return boxes, nil
}
