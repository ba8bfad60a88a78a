// Package orders provides a client for the imagery Orders API: order
// composition, submission, status polling, listing and cancelation.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "planet-orders/1.0"

// Client handles communication with the Orders API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Orders API client.
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

// Create submits an order and returns it with its server-assigned ID.
func (c *Client) Create(ctx context.Context, req Request) (*Order, error) {
	if err := validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid order request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	c.logger.DebugContext(ctx, "submitting order",
		slog.String("name", req.Name),
		slog.Int("products", len(req.Products)),
	)

	var order Order
	if err := c.do(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body), &order); err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	if order.ID == "" {
		return nil, fmt.Errorf("order response has no id")
	}

	c.logger.InfoContext(ctx, "order submitted",
		slog.String("order_id", order.ID),
		slog.String("name", order.Name),
		slog.String("state", order.State),
	)

	return &order, nil
}

// Get fetches the current state of an order.
func (c *Client) Get(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/"+orderID, nil, &order); err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	return &order, nil
}

// List returns all orders, following paging links. If state is non-empty
// only orders in that state are returned.
func (c *Client) List(ctx context.Context, state string) ([]Order, error) {
	u := c.baseURL
	if state != "" {
		u += "?state=" + url.QueryEscape(state)
	}

	var all []Order
	for u != "" {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		all = append(all, page.Orders...)
		u = page.Links.Next
	}

	return all, nil
}

// Cancel requests cancelation of a queued or running order.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	c.logger.InfoContext(ctx, "cancelling order",
		slog.String("order_id", orderID),
	)

	if err := c.do(ctx, http.MethodPut, c.baseURL+"/"+orderID, nil, nil); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}
	return nil
}

// validateRequest checks client-side constraints before submission.
func validateRequest(req *Request) error {
	if req.Name == "" {
		return fmt.Errorf("order name is required")
	}
	if len(req.Products) == 0 {
		return fmt.Errorf("order needs at least one product")
	}
	for i, p := range req.Products {
		if len(p.ItemIDs) == 0 {
			return fmt.Errorf("product %d has no item IDs", i)
		}
		if p.ItemType == "" {
			return fmt.Errorf("product %d has no item type", i)
		}
		if p.ProductBundle == "" {
			return fmt.Errorf("product %d has no product bundle", i)
		}
	}
	return nil
}

// do executes an authenticated JSON request and decodes the response into out.
// out may be nil for requests whose body is discarded.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "orders API request failed",
			slog.String("error", err.Error()),
			slog.String("url", url),
		)
		return fmt.Errorf("orders API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "orders API returned error status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)),
		)
		return fmt.Errorf("orders API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode orders response",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to decode orders response: %w", err)
	}

	return nil
}
