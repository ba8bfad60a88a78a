// Package commands implements the CLI command tree.
package commands

import (
	"log/slog"

	"github.com/robert-malhotra/planet-orders/internal/config"
	"github.com/robert-malhotra/planet-orders/internal/orders"
	"github.com/robert-malhotra/planet-orders/internal/planet"
	"github.com/robert-malhotra/planet-orders/internal/tiles"
)

// App carries the configuration and API clients shared by all commands.
// It is populated by the root command's Before hook, after flags and
// environment are resolved.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger

	Data   *planet.Client
	Orders *orders.Client
	Tiles  *tiles.Client
}
