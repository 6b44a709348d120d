// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/takigulyaki/afisha/internal/store"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"TG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"TG_ENV" envDefault:"development"`
	LogLevel   string `env:"TG_LOG_LEVEL" envDefault:"info"`

	// Site identity used in page titles, canonical links and JSON-LD.
	SiteURL         string `env:"TG_SITE_URL" envDefault:"https://taki-gulyaki.netlify.app"`
	SiteName        string `env:"TG_SITE_NAME" envDefault:"Таки Гуляки"`
	SiteDescription string `env:"TG_SITE_DESCRIPTION" envDefault:"Афиша прогулок, встреч и мастер-классов."`
	Timezone        string `env:"TG_TIMEZONE" envDefault:"Asia/Jerusalem"`

	// Block all crawlers, for staging and preview deployments
	RobotsDisallowAll bool `env:"TG_ROBOTS_DISALLOW_ALL" envDefault:"false"`

	// Events catalog
	EventsSource string        `env:"TG_EVENTS_SOURCE" envDefault:"./data/events.json"` // File path or http(s) URL
	FetchTimeout time.Duration `env:"TG_FETCH_TIMEOUT" envDefault:"10s"`
	RefreshCron  string        `env:"TG_REFRESH_CRON"` // Optional, e.g. "*/15 * * * *"

	// Admin event store
	StoreBackend string `env:"TG_STORE_BACKEND" envDefault:"sqlite"`
	DBPath       string `env:"TG_DB_PATH" envDefault:"./data/afisha.db"`
	RedisURL     string `env:"TG_REDIS_URL"`
	RedisPrefix  string `env:"TG_REDIS_PREFIX" envDefault:"afisha:"`
	PostgresDSN  string `env:"TG_POSTGRES_DSN"`

	// Per-IP limit on admin form submissions
	AdminRateLimit float64 `env:"TG_ADMIN_RATE_LIMIT" envDefault:"2"`
	AdminRateBurst int     `env:"TG_ADMIN_RATE_BURST" envDefault:"10"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// RefreshEnabled returns true if periodic catalog refreshes are configured.
func (c Config) RefreshEnabled() bool {
	return c.RefreshCron != ""
}

// StoreConfig returns the event store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Backend:        c.StoreBackend,
		DBPath:         c.DBPath,
		RedisURL:       c.RedisURL,
		RedisPrefix:    c.RedisPrefix,
		PostgresDSN:    c.PostgresDSN,
		ConnectTimeout: 5 * time.Second,
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("TG_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TG_TIMEZONE %q is not a known timezone: %w", c.Timezone, err)
	}

	if strings.TrimSpace(c.EventsSource) == "" {
		return fmt.Errorf("TG_EVENTS_SOURCE must not be empty")
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("TG_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}

	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("TG_REFRESH_CRON %q: %w", c.RefreshCron, err)
		}
	}

	if !slices.Contains(store.Backends, c.StoreBackend) {
		return fmt.Errorf("TG_STORE_BACKEND must be one of %s, got %q",
			strings.Join(store.Backends, ", "), c.StoreBackend)
	}
	switch {
	case c.StoreBackend == store.BackendRedis && c.RedisURL == "":
		return fmt.Errorf("TG_REDIS_URL is required for the redis store backend")
	case c.StoreBackend == store.BackendPostgres && c.PostgresDSN == "":
		return fmt.Errorf("TG_POSTGRES_DSN is required for the postgres store backend")
	}

	if c.AdminRateLimit <= 0 || c.AdminRateBurst <= 0 {
		return fmt.Errorf("TG_ADMIN_RATE_LIMIT and TG_ADMIN_RATE_BURST must be positive")
	}

	return nil
}
