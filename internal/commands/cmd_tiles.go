package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/tiles"
	"github.com/robert-malhotra/planet-orders/pkg/aoi"
)

// TilesCmd implements `planet-orders tiles`.
type TilesCmd struct {
	app *App
}

// NewTilesCmd creates a new tiles command.
func NewTilesCmd(app *App) *TilesCmd {
	return &TilesCmd{app: app}
}

// Register adds the tiles command tree to the application.
func (cmd *TilesCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "tiles",
		Usage: "Fetch map tiles for a scene",
		Commands: []*cli.Command{
			{
				Name:      "fetch",
				Usage:     "Download the tiles covering an area at a zoom level",
				UsageText: "planet-orders tiles fetch --aoi <file> [options] <item-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "aoi",
						Aliases:  []string{"a"},
						Usage:    "path to a GeoJSON file; its bounding box selects the tiles",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "item-type",
						Aliases: []string{"t"},
						Usage:   "item type of the scene",
						Value:   "PSScene",
					},
					&cli.IntFlag{
						Name:    "zoom",
						Aliases: []string{"z"},
						Usage:   fmt.Sprintf("zoom level (0 to %d)", tiles.MaxZoom),
						Value:   12,
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "directory to write tiles to (defaults to <download-dir>/tiles)",
					},
				},
				Action: cmd.fetch,
			},
		},
	})

	return root
}

func (cmd *TilesCmd) fetch(ctx context.Context, c *cli.Command) error {
	itemID := c.Args().First()
	if itemID == "" {
		return fmt.Errorf("item ID is required")
	}

	zoom := int(c.Int("zoom"))
	if zoom < 0 || zoom > tiles.MaxZoom {
		return fmt.Errorf("zoom %d out of range (0 to %d)", zoom, tiles.MaxZoom)
	}

	area, err := aoi.Load(c.String("aoi"))
	if err != nil {
		return err
	}
	bbox := aoi.BBox(area)

	dir := c.String("dir")
	if dir == "" {
		dir = filepath.Join(cmd.app.Cfg.Download.Dir, "tiles")
	}

	paths, err := cmd.app.Tiles.FetchCovering(ctx, c.String("item-type"), itemID, bbox, zoom, dir)
	if err != nil {
		return fmt.Errorf("fetch tiles: %w", err)
	}

	cmd.app.Logger.Info("tiles downloaded",
		"item", itemID,
		"zoom", zoom,
		"tiles", len(paths),
		"dir", dir,
	)

	return nil
}
