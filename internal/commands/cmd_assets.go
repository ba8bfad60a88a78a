package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/download"
	"github.com/robert-malhotra/planet-orders/internal/planet"
)

// AssetsCmd implements `planet-orders assets`.
type AssetsCmd struct {
	app *App
}

// NewAssetsCmd creates a new assets command.
func NewAssetsCmd(app *App) *AssetsCmd {
	return &AssetsCmd{app: app}
}

// Register adds the assets command tree to the application.
func (cmd *AssetsCmd) Register(root *cli.Command) *cli.Command {
	itemTypeFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "item-type",
			Aliases: []string{"t"},
			Usage:   "item type of the scene",
			Value:   "PSScene",
		}
	}

	root.Commands = append(root.Commands, &cli.Command{
		Name:  "assets",
		Usage: "Inspect, activate and download scene assets",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the assets of a scene",
				UsageText: "planet-orders assets list [options] <item-id>",
				Flags:     []cli.Flag{itemTypeFlag()},
				Action:    cmd.list,
			},
			{
				Name:      "activate",
				Usage:     "Activate an asset and wait for it to become active",
				UsageText: "planet-orders assets activate [options] <item-id> <asset-type>",
				Flags:     []cli.Flag{itemTypeFlag()},
				Action:    cmd.activate,
			},
			{
				Name:      "download",
				Usage:     "Activate an asset and download it once active",
				UsageText: "planet-orders assets download [options] <item-id> <asset-type>",
				Flags:     []cli.Flag{itemTypeFlag()},
				Action:    cmd.download,
			},
		},
	})

	return root
}

func (cmd *AssetsCmd) list(ctx context.Context, c *cli.Command) error {
	itemID := c.Args().First()
	if itemID == "" {
		return fmt.Errorf("item ID is required")
	}

	assets, err := cmd.app.Data.Assets(ctx, c.String("item-type"), itemID)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	return printJSON(assets)
}

func (cmd *AssetsCmd) activate(ctx context.Context, c *cli.Command) error {
	asset, err := cmd.activateAndWait(ctx, c)
	if err != nil {
		return err
	}

	return printJSON(asset)
}

func (cmd *AssetsCmd) download(ctx context.Context, c *cli.Command) error {
	asset, err := cmd.activateAndWait(ctx, c)
	if err != nil {
		return err
	}

	itemID := c.Args().Get(0)
	assetType := c.Args().Get(1)

	dl := download.New(cmd.app.Cfg.Download.Dir, cmd.app.Cfg.Download.Overwrite, cmd.app.Cfg.Download.Timeout).
		WithLogger(cmd.app.Logger)

	name := assetFileName(itemID, assetType, asset.Location)
	paths, err := dl.Fetch(ctx, []download.File{{URL: asset.Location, Name: name}})
	if err != nil {
		return fmt.Errorf("download asset: %w", err)
	}

	cmd.app.Logger.Info("asset downloaded", "item", itemID, "asset", assetType, "path", paths[0])

	return nil
}

// assetFileName derives a local name from the delivery URL's extension.
// Not every asset is imagery; UDM and metadata assets carry their own
// extensions. Falls back to .tif when the URL path has none.
func assetFileName(itemID, assetType, location string) string {
	ext := ".tif"
	if u, err := url.Parse(location); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("%s_%s%s", itemID, assetType, ext)
}

func (cmd *AssetsCmd) activateAndWait(ctx context.Context, c *cli.Command) (*planet.Asset, error) {
	itemID := c.Args().Get(0)
	assetType := c.Args().Get(1)
	if itemID == "" || assetType == "" {
		return nil, fmt.Errorf("item ID and asset type are required")
	}
	itemType := c.String("item-type")

	assets, err := cmd.app.Data.Assets(ctx, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	asset, ok := assets[assetType]
	if !ok {
		return nil, fmt.Errorf("item %s has no %s asset", itemID, assetType)
	}

	if !asset.Active() {
		if err := cmd.app.Data.Activate(ctx, &asset); err != nil {
			return nil, fmt.Errorf("activate asset: %w", err)
		}
	}

	cfg := cmd.app.Cfg.Orders

	active, err := cmd.app.Data.WaitAsset(ctx, itemType, itemID, assetType, cfg.PollInterval, cfg.PollMaxIters)
	if err != nil {
		if errors.Is(err, planet.ErrActivationDeadline) {
			return nil, fmt.Errorf("asset %s of item %s did not activate in time: %w", assetType, itemID, err)
		}
		return nil, fmt.Errorf("wait for asset: %w", err)
	}

	return active, nil
}
