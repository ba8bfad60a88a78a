package tiles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const userAgent = "planet-orders/1.0"

// Client fetches map tiles from the imagery tile server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new tile server client.
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

// URL returns the remote tile URL for an item's tile, with the API key
// attached as a query parameter.
func (c *Client) URL(itemType, itemID string, t Tile) string {
	return fmt.Sprintf("%s/%s/%s/%s?api_key=%s",
		c.baseURL, itemType, itemID, t.Path(), url.QueryEscape(c.apiKey))
}

// Get fetches one tile image and returns its bytes and media type.
func (c *Client) Get(ctx context.Context, itemType, itemID string, t Tile) ([]byte, string, error) {
	if !t.Valid() {
		return nil, "", fmt.Errorf("invalid tile %d/%d/%d", t.Z, t.X, t.Y)
	}

	tileURL := c.URL(itemType, itemID, t)

	c.logger.DebugContext(ctx, "fetching tile",
		slog.String("item_id", itemID),
		slog.Int("z", t.Z),
		slog.Int("x", t.X),
		slog.Int("y", t.Y),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("tile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("tile server returned status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read tile body: %w", err)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "image/png"
	}

	return data, mediaType, nil
}

// FetchCovering downloads every tile covering bbox at a zoom level into
// dir, laid out as <dir>/<z>/<x>/<y>.png, sequentially. Returns the
// written paths.
func (c *Client) FetchCovering(ctx context.Context, itemType, itemID string, bbox [4]float64, zoom int, dir string) ([]string, error) {
	cover := Covering(bbox, zoom)

	c.logger.InfoContext(ctx, "fetching tile covering",
		slog.String("item_id", itemID),
		slog.Int("zoom", zoom),
		slog.Int("tile_count", len(cover)),
	)

	paths := make([]string, 0, len(cover))
	for _, t := range cover {
		data, _, err := c.Get(ctx, itemType, itemID, t)
		if err != nil {
			return paths, fmt.Errorf("failed to fetch tile %s: %w", t.Path(), err)
		}

		path := filepath.Join(dir, filepath.FromSlash(t.Path()))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return paths, fmt.Errorf("failed to create tile directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write tile: %w", err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
