package planet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrActivationDeadline is returned when an asset has not become active
// within the configured number of polling iterations.
var ErrActivationDeadline = errors.New("asset did not become active within the polling limit")

// Assets lists the assets available for an item, keyed by asset type
// (e.g. "ortho_analytic_4b", "ortho_visual").
func (c *Client) Assets(ctx context.Context, itemType, itemID string) (map[string]Asset, error) {
	c.logger.DebugContext(ctx, "listing assets",
		slog.String("item_type", itemType),
		slog.String("item_id", itemID),
	)

	url := fmt.Sprintf("%s/item-types/%s/items/%s/assets", c.baseURL, itemType, itemID)

	var result map[string]Asset
	if err := c.do(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list assets for %s: %w", itemID, err)
	}

	return result, nil
}

// Activate requests activation of an asset. Activation is asynchronous;
// poll with WaitAsset until the asset reports active.
func (c *Client) Activate(ctx context.Context, asset *Asset) error {
	if asset.Links.Activate == "" {
		return fmt.Errorf("asset has no activation link")
	}

	c.logger.DebugContext(ctx, "activating asset",
		slog.String("url", asset.Links.Activate),
	)

	if err := c.do(ctx, http.MethodGet, asset.Links.Activate, nil, nil); err != nil {
		return fmt.Errorf("failed to activate asset: %w", err)
	}

	return nil
}

// WaitAsset polls an item's asset at a fixed interval until it becomes
// active, returning the asset with its download location populated.
// If the asset is still not active after maxIters fetches, WaitAsset
// returns ErrActivationDeadline.
func (c *Client) WaitAsset(ctx context.Context, itemType, itemID, assetType string, interval time.Duration, maxIters int) (*Asset, error) {
	for i := 0; i < maxIters; i++ {
		assets, err := c.Assets(ctx, itemType, itemID)
		if err != nil {
			return nil, err
		}

		asset, ok := assets[assetType]
		if !ok {
			return nil, fmt.Errorf("item %s has no asset %q", itemID, assetType)
		}

		if asset.Active() {
			c.logger.InfoContext(ctx, "asset active",
				slog.String("item_id", itemID),
				slog.String("asset_type", assetType),
			)
			return &asset, nil
		}

		c.logger.DebugContext(ctx, "asset not ready",
			slog.String("item_id", itemID),
			slog.String("asset_type", assetType),
			slog.String("status", asset.Status),
			slog.Int("iteration", i+1),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	return nil, fmt.Errorf("asset %s of item %s: %w", assetType, itemID, ErrActivationDeadline)
}
