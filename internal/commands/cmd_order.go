package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/download"
	"github.com/robert-malhotra/planet-orders/internal/orders"
	"github.com/robert-malhotra/planet-orders/pkg/aoi"
)

// OrderCmd implements `planet-orders order` and its subcommands.
type OrderCmd struct {
	app *App
}

// NewOrderCmd creates a new order command.
func NewOrderCmd(app *App) *OrderCmd {
	return &OrderCmd{app: app}
}

// Register adds the order command tree to the application.
func (cmd *OrderCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "order",
		Usage: "Create and manage imagery orders",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Submit a new order",
				UsageText: "planet-orders order create [options] [item-id ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "order template file (YAML); other flags are ignored",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "order name",
					},
					&cli.StringFlag{
						Name:    "item-type",
						Aliases: []string{"t"},
						Usage:   "item type of the listed item IDs",
						Value:   "PSScene",
					},
					&cli.StringFlag{
						Name:    "bundle",
						Aliases: []string{"b"},
						Usage:   "product bundle to order",
						Value:   "analytic_sr_udm2",
					},
					&cli.StringFlag{
						Name:  "clip",
						Usage: "path to a GeoJSON file to clip scenes to",
					},
					&cli.BoolFlag{
						Name:  "composite",
						Usage: "composite the scenes into a single image",
					},
					&cli.BoolFlag{
						Name:  "ndvi",
						Usage: "add an NDVI band math step",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "poll until the order reaches a final state",
					},
				},
				Action: cmd.create,
			},
			{
				Name:      "get",
				Usage:     "Show a single order",
				UsageText: "planet-orders order get <order-id>",
				Action:    cmd.get,
			},
			{
				Name:  "list",
				Usage: "List orders",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "only orders in this state",
					},
				},
				Action: cmd.list,
			},
			{
				Name:      "wait",
				Usage:     "Poll an order until it reaches a final state",
				UsageText: "planet-orders order wait <order-id>",
				Action:    cmd.wait,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a queued or running order",
				UsageText: "planet-orders order cancel <order-id>",
				Action:    cmd.cancel,
			},
			{
				Name:      "download",
				Usage:     "Download the result files of a finished order",
				UsageText: "planet-orders order download [options] <order-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "unzip",
						Usage: "extract downloaded zip archives",
					},
				},
				Action: cmd.download,
			},
		},
	})

	return root
}

func (cmd *OrderCmd) create(ctx context.Context, c *cli.Command) error {
	req, err := cmd.buildRequest(c)
	if err != nil {
		return err
	}

	order, err := cmd.app.Orders.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	cmd.app.Logger.Info("order submitted",
		"id", order.ID,
		"name", order.Name,
		"state", order.State,
	)

	if c.Bool("wait") {
		order, err = cmd.waitFor(ctx, order.ID)
		if err != nil {
			return err
		}
	}

	return printJSON(order)
}

func (cmd *OrderCmd) buildRequest(c *cli.Command) (orders.Request, error) {
	if path := c.String("file"); path != "" {
		tpl, err := orders.LoadTemplate(path)
		if err != nil {
			return orders.Request{}, err
		}
		return tpl.Request()
	}

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return orders.Request{}, fmt.Errorf("no item IDs given (pass IDs as arguments or use --file)")
	}

	req := orders.Request{
		Name: c.String("name"),
		Products: []orders.Product{{
			ItemIDs:       ids,
			ItemType:      c.String("item-type"),
			ProductBundle: c.String("bundle"),
		}},
		Delivery: orders.ZipDelivery(),
	}

	if path := c.String("clip"); path != "" {
		geom, err := aoi.Load(path)
		if err != nil {
			return orders.Request{}, err
		}
		req.Tools = append(req.Tools, orders.Clip(geom))
	}
	if c.Bool("composite") {
		req.Tools = append(req.Tools, orders.Composite())
	}
	if c.Bool("ndvi") {
		req.Tools = append(req.Tools, orders.NDVI())
	}

	return req, nil
}

func (cmd *OrderCmd) get(ctx context.Context, c *cli.Command) error {
	orderID := c.Args().First()
	if orderID == "" {
		return fmt.Errorf("order ID is required")
	}

	order, err := cmd.app.Orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	return printJSON(order)
}

func (cmd *OrderCmd) list(ctx context.Context, c *cli.Command) error {
	list, err := cmd.app.Orders.List(ctx, c.String("state"))
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	cmd.app.Logger.Info("orders listed", "count", len(list))

	return printJSON(list)
}

func (cmd *OrderCmd) wait(ctx context.Context, c *cli.Command) error {
	orderID := c.Args().First()
	if orderID == "" {
		return fmt.Errorf("order ID is required")
	}

	order, err := cmd.waitFor(ctx, orderID)
	if err != nil {
		return err
	}

	return printJSON(order)
}

func (cmd *OrderCmd) waitFor(ctx context.Context, orderID string) (*orders.Order, error) {
	cfg := cmd.app.Cfg.Orders

	order, err := cmd.app.Orders.Wait(ctx, orderID, cfg.PollInterval, cfg.PollMaxIters)
	if err != nil {
		if errors.Is(err, orders.ErrWaitDeadline) {
			return nil, fmt.Errorf("order %s did not finish in time: %w", orderID, err)
		}
		return nil, fmt.Errorf("wait for order: %w", err)
	}

	return order, nil
}

func (cmd *OrderCmd) cancel(ctx context.Context, c *cli.Command) error {
	orderID := c.Args().First()
	if orderID == "" {
		return fmt.Errorf("order ID is required")
	}

	if err := cmd.app.Orders.Cancel(ctx, orderID); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	cmd.app.Logger.Info("order cancelled", "id", orderID)

	return nil
}

func (cmd *OrderCmd) download(ctx context.Context, c *cli.Command) error {
	orderID := c.Args().First()
	if orderID == "" {
		return fmt.Errorf("order ID is required")
	}

	order, err := cmd.app.Orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if !order.Terminal() {
		return fmt.Errorf("order %s is still %s; wait for it to finish first", orderID, order.State)
	}
	if len(order.Links.Results) == 0 {
		return fmt.Errorf("order %s has no result files", orderID)
	}

	files := make([]download.File, 0, len(order.Links.Results))
	for _, r := range order.Links.Results {
		files = append(files, download.File{URL: r.Location, Name: r.Name})
	}

	dl := download.New(cmd.app.Cfg.Download.Dir, cmd.app.Cfg.Download.Overwrite, cmd.app.Cfg.Download.Timeout).
		WithLogger(cmd.app.Logger)

	paths, err := dl.Fetch(ctx, files)
	if err != nil {
		return fmt.Errorf("download order %s: %w", orderID, err)
	}

	cmd.app.Logger.Info("order downloaded",
		"id", orderID,
		"files", len(paths),
	)

	if c.Bool("unzip") {
		for _, p := range paths {
			if !isZip(p) {
				cmd.app.Logger.Debug("not an archive, skipping extraction", "path", p)
				continue
			}
			dir, err := download.Unzip(p, cmd.app.Cfg.Download.Overwrite)
			if err != nil {
				if errors.Is(err, download.ErrExists) {
					cmd.app.Logger.Warn("skipping extraction, directory exists", "archive", p)
					continue
				}
				return fmt.Errorf("unzip %s: %w", p, err)
			}
			cmd.app.Logger.Info("archive extracted", "archive", p, "dir", dir)
		}
	}

	return nil
}

// isZip reports whether a downloaded path is a zip archive. Orders often
// deliver a manifest and checksum files alongside the archive.
func isZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
