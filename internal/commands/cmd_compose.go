package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/download"
	"github.com/robert-malhotra/planet-orders/internal/orders"
	"github.com/robert-malhotra/planet-orders/internal/planet"
	"github.com/robert-malhotra/planet-orders/pkg/aoi"
)

// ComposeCmd implements `planet-orders compose`: search for scenes over an
// area, group them by acquisition date and submit one composite order per day.
type ComposeCmd struct {
	app *App
}

// NewComposeCmd creates a new compose command.
func NewComposeCmd(app *App) *ComposeCmd {
	return &ComposeCmd{app: app}
}

// Register adds the compose command to the application.
func (cmd *ComposeCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "compose",
		Usage:     "Order one clipped daily composite per acquisition date",
		UsageText: "planet-orders compose --aoi <file> --start <date> --end <date> [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "aoi",
				Aliases:  []string{"a"},
				Usage:    "path to a GeoJSON file; scenes are searched and clipped to it",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "start",
				Usage:    "earliest acquisition date (YYYY-MM-DD)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "end",
				Usage:    "latest acquisition date (YYYY-MM-DD, inclusive)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "item-type",
				Aliases: []string{"t"},
				Usage:   "item type to search and order",
				Value:   "PSScene",
			},
			&cli.StringFlag{
				Name:    "bundle",
				Aliases: []string{"b"},
				Usage:   "product bundle to order",
				Value:   "analytic_sr_udm2",
			},
			&cli.FloatFlag{
				Name:  "max-cloud",
				Usage: "maximum cloud cover fraction (0 to 1)",
				Value: 0.1,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "order name prefix, suffixed with the date",
				Value: "composite",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "stop the search after this many items (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "poll each order until it reaches a final state",
			},
			&cli.BoolFlag{
				Name:  "download",
				Usage: "download results once each order finishes (implies --wait)",
			},
			&cli.BoolFlag{
				Name:  "unzip",
				Usage: "extract downloaded archives",
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *ComposeCmd) run(ctx context.Context, c *cli.Command) error {
	geom, err := aoi.Load(c.String("aoi"))
	if err != nil {
		return err
	}

	start, end, err := parseDateRange(c.String("start"), c.String("end"))
	if err != nil {
		return err
	}

	req := planet.SearchRequest{
		ItemTypes: []string{c.String("item-type")},
		Filter: planet.And(
			planet.Intersects(geom),
			planet.AcquiredBetween(start, end),
			planet.CloudCoverBelow(c.Float("max-cloud")),
			planet.Downloadable(),
		),
	}

	features, err := cmd.app.Data.SearchAll(ctx, req, int(c.Int("limit")))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(features) == 0 {
		return fmt.Errorf("no scenes match the given area and date range")
	}

	groups := planet.GroupByDate(features)

	cmd.app.Logger.Info("scenes grouped",
		"scenes", len(features),
		"days", len(groups),
	)

	reqs := orders.DailyComposites(
		c.String("name"),
		c.String("item-type"),
		c.String("bundle"),
		groups,
		geom,
	)

	submitted := make([]*orders.Order, 0, len(reqs))
	for _, r := range reqs {
		order, err := cmd.app.Orders.Create(ctx, r)
		if err != nil {
			return fmt.Errorf("create order %q: %w", r.Name, err)
		}

		cmd.app.Logger.Info("order submitted",
			"id", order.ID,
			"name", order.Name,
			"scenes", len(r.Products[0].ItemIDs),
		)

		submitted = append(submitted, order)
	}

	if !c.Bool("wait") && !c.Bool("download") {
		return printJSON(submitted)
	}

	for i, order := range submitted {
		finished, err := cmd.app.Orders.Wait(ctx, order.ID, cmd.app.Cfg.Orders.PollInterval, cmd.app.Cfg.Orders.PollMaxIters)
		if err != nil {
			return fmt.Errorf("wait for order %s: %w", order.ID, err)
		}
		submitted[i] = finished

		if c.Bool("download") {
			if err := cmd.downloadOrder(ctx, finished, c.Bool("unzip")); err != nil {
				return err
			}
		}
	}

	return printJSON(submitted)
}

func (cmd *ComposeCmd) downloadOrder(ctx context.Context, order *orders.Order, unzip bool) error {
	if len(order.Links.Results) == 0 {
		cmd.app.Logger.Warn("order has no result files", "id", order.ID, "state", order.State)
		return nil
	}

	files := make([]download.File, 0, len(order.Links.Results))
	for _, r := range order.Links.Results {
		files = append(files, download.File{URL: r.Location, Name: r.Name})
	}

	dl := download.New(cmd.app.Cfg.Download.Dir, cmd.app.Cfg.Download.Overwrite, cmd.app.Cfg.Download.Timeout).
		WithLogger(cmd.app.Logger)

	paths, err := dl.Fetch(ctx, files)
	if err != nil {
		return fmt.Errorf("download order %s: %w", order.ID, err)
	}

	if unzip {
		for _, p := range paths {
			if !isZip(p) {
				cmd.app.Logger.Debug("not an archive, skipping extraction", "path", p)
				continue
			}
			if _, err := download.Unzip(p, cmd.app.Cfg.Download.Overwrite); err != nil {
				return fmt.Errorf("unzip %s: %w", p, err)
			}
		}
	}

	return nil
}
