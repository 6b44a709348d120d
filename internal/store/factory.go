// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Backend names accepted in Config.Backend.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendSQLite, BackendRedis, BackendPostgres, BackendMemory}

// Config selects and configures a BlobStore backend.
type Config struct {
	// Backend is one of the Backend* constants. Empty selects SQLite.
	Backend string

	// DBPath is the SQLite file, also the fallback for remote backends.
	DBPath string

	// RedisURL is the Redis connection URL (e.g., redis://localhost:6379/0)
	RedisURL    string
	RedisPrefix string

	// PostgresDSN is the PostgreSQL connection string.
	PostgresDSN string

	ConnectTimeout time.Duration
}

// NewBlobStore opens the configured backend. When Redis or PostgreSQL
// cannot be reached it logs a warning and falls back to SQLite.
func NewBlobStore(ctx context.Context, cfg Config, logger *slog.Logger) (BlobStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryBlobStore(), nil

	case BackendRedis:
		rs, err := OpenRedis(ctx, RedisOptions{
			URL:            cfg.RedisURL,
			Prefix:         cfg.RedisPrefix,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err == nil {
			logger.Info("event store using redis", "url", RedactURL(cfg.RedisURL))
			return rs, nil
		}
		logger.Warn("redis unavailable, falling back to sqlite",
			"url", RedactURL(cfg.RedisURL), "error", err)

	case BackendPostgres:
		connectCtx := ctx
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}
		ps, err := OpenPostgres(connectCtx, cfg.PostgresDSN)
		if err == nil {
			logger.Info("event store using postgres")
			return ps, nil
		}
		logger.Warn("postgres unavailable, falling back to sqlite", "error", err)

	case "", BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	ss, err := OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	logger.Info("event store using sqlite", "path", cfg.DBPath)
	return ss, nil
}
