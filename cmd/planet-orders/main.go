// planet-orders CLI entry point
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/planet-orders/internal/commands"
	"github.com/robert-malhotra/planet-orders/internal/config"
	"github.com/robert-malhotra/planet-orders/internal/orders"
	"github.com/robert-malhotra/planet-orders/internal/planet"
	"github.com/robert-malhotra/planet-orders/internal/tiles"
)

var version = "dev"

func main() {
	ctx := context.Background()

	// Populated by the root command's Before hook; subcommands hold a
	// pointer to it.
	app := &commands.App{}

	root := &cli.Command{
		Name:      "planet-orders",
		Usage:     "Search, order and download satellite imagery",
		UsageText: "planet-orders [global options] command [command options]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log format (text, json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// A .env file is optional; environment variables win either way.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}

			if lv := c.String("log-level"); lv != "" {
				cfg.Logging.Level = lv
			}
			if lf := c.String("log-format"); lf != "" {
				cfg.Logging.Format = lf
			}

			logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

			app.Cfg = cfg
			app.Logger = logger
			app.Data = planet.NewClient(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Timeout).WithLogger(logger)
			app.Orders = orders.NewClient(cfg.Orders.BaseURL, cfg.API.APIKey, cfg.Orders.Timeout).WithLogger(logger)
			app.Tiles = tiles.NewClient(cfg.Tiles.BaseURL, cfg.API.APIKey, cfg.Tiles.Timeout).WithLogger(logger)

			return ctx, nil
		},
	}

	root = commands.NewSearchCmd(app).Register(root)
	root = commands.NewAssetsCmd(app).Register(root)
	root = commands.NewOrderCmd(app).Register(root)
	root = commands.NewComposeCmd(app).Register(root)
	root = commands.NewTilesCmd(app).Register(root)
	root = commands.NewServeCmd(app).Register(root)

	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
