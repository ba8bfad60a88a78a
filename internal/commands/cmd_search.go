package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/planet"
	"github.com/robert-malhotra/planet-orders/internal/stac"
	"github.com/robert-malhotra/planet-orders/pkg/aoi"
)

// SearchCmd implements `planet-orders search`.
type SearchCmd struct {
	app *App
}

// NewSearchCmd creates a new search command.
func NewSearchCmd(app *App) *SearchCmd {
	return &SearchCmd{app: app}
}

// Register adds the search command to the application.
func (cmd *SearchCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "search",
		Usage:     "Search the imagery catalog",
		UsageText: "planet-orders search [options]",
		Description: `Searches the catalog with the given filters and prints matching items.

Output formats:
  json   full item records, one JSON document
  stac   a STAC ItemCollection
  ids    one item ID per line`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "item-type",
				Aliases: []string{"t"},
				Usage:   "item types to search (repeatable)",
				Value:   []string{"PSScene"},
			},
			&cli.StringFlag{
				Name:    "aoi",
				Aliases: []string{"a"},
				Usage:   "path to a GeoJSON file bounding the search area",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "earliest acquisition date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "latest acquisition date (YYYY-MM-DD, inclusive)",
			},
			&cli.FloatFlag{
				Name:  "max-cloud",
				Usage: "maximum cloud cover fraction (0 to 1)",
				Value: 1.0,
			},
			&cli.BoolFlag{
				Name:  "downloadable",
				Usage: "only items whose assets may be downloaded",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "stop after this many items (0 for all)",
				Value:   250,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: json, stac or ids",
				Value: "json",
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	req, err := buildSearchRequest(c)
	if err != nil {
		return err
	}

	features, err := cmd.app.Data.SearchAll(ctx, req, int(c.Int("limit")))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	cmd.app.Logger.Info("search completed",
		"items", len(features),
	)

	return writeSearchOutput(features, c.String("format"))
}

// buildSearchRequest assembles the filter tree from command flags.
func buildSearchRequest(c *cli.Command) (planet.SearchRequest, error) {
	var filters []any

	if path := c.String("aoi"); path != "" {
		geom, err := aoi.Load(path)
		if err != nil {
			return planet.SearchRequest{}, err
		}
		filters = append(filters, planet.Intersects(geom))
	}

	start, end, err := parseDateRange(c.String("start"), c.String("end"))
	if err != nil {
		return planet.SearchRequest{}, err
	}
	if !start.IsZero() || !end.IsZero() {
		if start.IsZero() {
			start = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		if end.IsZero() {
			end = time.Now().UTC()
		}
		filters = append(filters, planet.AcquiredBetween(start, end))
	}

	if max := c.Float("max-cloud"); max < 1.0 {
		filters = append(filters, planet.CloudCoverBelow(max))
	}

	if c.Bool("downloadable") {
		filters = append(filters, planet.Downloadable())
	}

	if len(filters) == 0 {
		return planet.SearchRequest{}, fmt.Errorf("at least one filter is required (aoi, date range, max-cloud or downloadable)")
	}

	return planet.SearchRequest{
		ItemTypes: c.StringSlice("item-type"),
		Filter:    planet.And(filters...),
	}, nil
}

// parseDateRange parses YYYY-MM-DD bounds. The end date is made inclusive
// by extending it to the end of its day.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time

	if startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date %q: %w", startStr, err)
		}
		start = t
	}

	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
		end = t.Add(24*time.Hour - time.Second)
	}

	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("end date is before start date")
	}

	return start, end, nil
}

func writeSearchOutput(features []planet.Feature, format string) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch format {
	case "json":
		return enc.Encode(features)

	case "stac":
		ic, err := stac.FromFeatures(features)
		if err != nil {
			return fmt.Errorf("stac export: %w", err)
		}
		return enc.Encode(ic)

	case "ids":
		for i := range features {
			fmt.Println(features[i].ID)
		}
		return nil

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
