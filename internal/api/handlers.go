package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robert-malhotra/planet-orders/internal/tiles"
)

// TileSource fetches tile images from the remote tile server.
// *tiles.Client satisfies this.
type TileSource interface {
	Get(ctx context.Context, itemType, itemID string, t tiles.Tile) ([]byte, string, error)
}

// Handlers holds the HTTP handlers for the tile proxy.
type Handlers struct {
	source TileSource
	logger *slog.Logger
}

// NewHandlers creates HTTP handlers backed by the given tile source.
func NewHandlers(source TileSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		source: source,
		logger: logger,
	}
}

// Health returns service health status.
// GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Tile proxies one tile request to the remote tile server.
// GET /tiles/{itemType}/{itemId}/{z}/{x}/{y}.png
func (h *Handlers) Tile(w http.ResponseWriter, r *http.Request) {
	itemType := chi.URLParam(r, "itemType")
	itemID := chi.URLParam(r, "itemId")

	tile, ok := parseTile(
		chi.URLParam(r, "z"),
		chi.URLParam(r, "x"),
		chi.URLParam(r, "y"),
	)
	if !ok {
		WriteBadRequest(w, "tile coordinates must be integers")
		return
	}

	if !tile.Valid() {
		WriteBadRequest(w, "tile coordinates out of range for zoom level")
		return
	}

	data, mediaType, err := h.source.Get(r.Context(), itemType, itemID, tile)
	if err != nil {
		h.logger.Error("upstream tile fetch failed",
			slog.String("item_id", itemID),
			slog.String("tile", tile.Path()),
			slog.String("error", err.Error()),
		)
		WriteUpstreamError(w, "failed to fetch tile from upstream")
		return
	}

	w.Header().Set("Content-Type", mediaType)
	// Tiles for a given item are immutable; let the browser cache them.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func parseTile(zs, xs, ys string) (tiles.Tile, bool) {
	z, err := strconv.Atoi(zs)
	if err != nil {
		return tiles.Tile{}, false
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return tiles.Tile{}, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return tiles.Tile{}, false
	}
	return tiles.Tile{Z: z, X: x, Y: y}, true
}
