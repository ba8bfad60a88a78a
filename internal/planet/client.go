// Package planet provides a client for the imagery catalog Data API:
// scene search with structured filters, item lookup, and asset activation.
package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// userAgent identifies this client to the remote API.
const userAgent = "planet-orders/1.0"

// Client handles communication with the Data API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Data API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// QuickSearch runs a search and returns the first page of results.
func (c *Client) QuickSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	c.logger.DebugContext(ctx, "executing quick search",
		slog.Any("item_types", req.ItemTypes),
	)

	var result SearchResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/quick-search", bytes.NewReader(body), &result); err != nil {
		return nil, fmt.Errorf("quick search failed: %w", err)
	}

	c.logger.DebugContext(ctx, "quick search completed",
		slog.Int("feature_count", len(result.Features)),
	)

	return &result, nil
}

// SearchAll runs a search and follows _next links until the result set is
// exhausted or limit items have been collected. limit <= 0 means no limit.
func (c *Client) SearchAll(ctx context.Context, req SearchRequest, limit int) ([]Feature, error) {
	page, err := c.QuickSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	features := page.Features
	next := page.Links.Next

	for next != "" && (limit <= 0 || len(features) < limit) {
		c.logger.DebugContext(ctx, "fetching next search page",
			slog.String("url", next),
			slog.Int("collected", len(features)),
		)

		var nextPage SearchResponse
		if err := c.do(ctx, http.MethodGet, next, nil, &nextPage); err != nil {
			return nil, fmt.Errorf("failed to fetch search page: %w", err)
		}

		features = append(features, nextPage.Features...)
		next = nextPage.Links.Next
	}

	if limit > 0 && len(features) > limit {
		features = features[:limit]
	}

	return features, nil
}

// GetItem retrieves a single catalog item by type and ID.
func (c *Client) GetItem(ctx context.Context, itemType, itemID string) (*Feature, error) {
	c.logger.DebugContext(ctx, "fetching item",
		slog.String("item_type", itemType),
		slog.String("item_id", itemID),
	)

	url := fmt.Sprintf("%s/item-types/%s/items/%s", c.baseURL, itemType, itemID)

	var result Feature
	if err := c.do(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch item %s: %w", itemID, err)
	}

	return &result, nil
}

// do executes an authenticated JSON request and decodes the response into out.
// out may be nil for requests whose body is discarded.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// The API key is passed as the basic-auth username.
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "API request failed",
			slog.String("error", err.Error()),
			slog.String("url", url),
		)
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "API returned error status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)),
		)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode response",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
