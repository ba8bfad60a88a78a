// Package config provides configuration management for the planet-orders CLI.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from environment variables.
type Config struct {
	API      APIConfig      `envPrefix:"PL_"`
	Orders   OrdersConfig   `envPrefix:"ORDERS_"`
	Tiles    TilesConfig    `envPrefix:"TILES_"`
	Download DownloadConfig `envPrefix:"DOWNLOAD_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
}

// APIConfig contains Data API client configuration.
type APIConfig struct {
	// APIKey authenticates every request. Required.
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.planet.com/data/v1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// OrdersConfig contains Orders API client and polling configuration.
type OrdersConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.planet.com/compute/ops/orders/v2"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`

	// PollInterval is the fixed sleep between status fetches.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	// PollMaxIters bounds the poll loop. Exhausting it ends the wait
	// with orders.ErrWaitDeadline.
	PollMaxIters int `env:"POLL_MAX_ITERS" envDefault:"180"`
}

// TilesConfig contains tile server client configuration.
type TilesConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://tiles.planet.com/data/v1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// DownloadConfig contains local download destination configuration.
type DownloadConfig struct {
	Dir       string `env:"DIR" envDefault:"./data"`
	Overwrite bool   `env:"OVERWRITE" envDefault:"false"`

	// Timeout bounds the whole transfer of a single file, body read
	// included. Result payloads can be hundreds of megabytes.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30m"`
}

// ServerConfig contains HTTP server configuration for the local tile proxy.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"127.0.0.1"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables.
// It returns an error if required fields are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	// Validate API config
	if c.API.APIKey == "" {
		return fmt.Errorf("PL_API_KEY is required")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.API.Timeout)
	}

	// Validate orders config
	if c.Orders.BaseURL == "" {
		return fmt.Errorf("orders base URL is required")
	}

	if c.Orders.Timeout <= 0 {
		return fmt.Errorf("orders timeout must be positive, got %s", c.Orders.Timeout)
	}

	if c.Orders.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Orders.PollInterval)
	}

	if c.Orders.PollMaxIters < 1 {
		return fmt.Errorf("poll max iterations must be at least 1, got %d", c.Orders.PollMaxIters)
	}

	// Validate tiles config
	if c.Tiles.BaseURL == "" {
		return fmt.Errorf("tiles base URL is required")
	}

	if c.Tiles.Timeout <= 0 {
		return fmt.Errorf("tiles timeout must be positive, got %s", c.Tiles.Timeout)
	}

	// Validate download config
	if c.Download.Dir == "" {
		return fmt.Errorf("download directory is required")
	}

	if c.Download.Timeout <= 0 {
		return fmt.Errorf("download timeout must be positive, got %s", c.Download.Timeout)
	}

	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive, got %s", c.Server.ReadTimeout)
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive, got %s", c.Server.WriteTimeout)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}

// Address returns the server listen address in the format "host:port".
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
