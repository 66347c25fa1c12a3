package notion

import (
	"bytes"
	"context"
	"encoding/json"
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

const (
	apiVersion      = "2022-06-28"
	childrenPerPage = 100
	serviceName     = "notion"
)

// Client implements domain.DocumentStore using the Notion REST API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Notion API client.
func NewClient(token, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// CreatePage adds a page to a database and returns the new page ID.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props []domain.Property, children []domain.Block) (string, error) {
	body := createPageRequest{
		Parent:     parent{DatabaseID: databaseID},
		Properties: encodeProperties(props),
	}
	for _, b := range children {
		body.Children = append(body.Children, encodeBlock(b))
	}

	var resp pageResponse
	if err := c.do(ctx, http.MethodPost, "/pages", body, &resp); err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create page: response has no page id")
	}
	return resp.ID, nil
}

// ListChildren returns one page of a block's direct children.
func (c *Client) ListChildren(ctx context.Context, blockID, cursor string) (domain.ChildrenPage, error) {
	params := url.Values{"page_size": {fmt.Sprint(childrenPerPage)}}
	if cursor != "" {
		params.Set("start_cursor", cursor)
	}
	path := "/blocks/" + url.PathEscape(blockID) + "/children?" + params.Encode()

	var resp childrenResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return domain.ChildrenPage{}, fmt.Errorf("list children: %w", err)
	}

	page := domain.ChildrenPage{
		Blocks:  make([]domain.Block, 0, len(resp.Results)),
		HasMore: resp.HasMore,
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	for _, b := range resp.Results {
		page.Blocks = append(page.Blocks, decodeBlock(b))
	}
	return page, nil
}

// AppendChildren inserts blocks as trailing children of blockID.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []domain.Block) error {
	body := appendChildrenRequest{Children: make([]block, 0, len(children))}
	for _, b := range children {
		body.Children = append(body.Children, encodeBlock(b))
	}

	path := "/blocks/" + url.PathEscape(blockID) + "/children"
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("append children: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveAPI(serviceName, start, err) }()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("notion request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &domain.APIError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
