// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS local_state (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBlobStore stores blobs in a local_state table on PostgreSQL.
// A single connection is used; calls are serialised.
type PostgresBlobStore struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// OpenPostgres connects with dsn and creates the table when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBlobStore, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres DSN: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("creating local_state: %w", err)
	}

	return &PostgresBlobStore{conn: conn}, nil
}

// Get implements BlobStore.
func (p *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var value []byte
	err := p.conn.QueryRow(ctx, `SELECT value FROM local_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Set implements BlobStore.
func (p *PostgresBlobStore) Set(ctx context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.conn.Exec(ctx, `
		INSERT INTO local_state (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Name implements BlobStore.
func (p *PostgresBlobStore) Name() string { return BackendPostgres }

// Close implements BlobStore.
func (p *PostgresBlobStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.Close(context.Background())
}
