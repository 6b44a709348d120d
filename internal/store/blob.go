// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the admin's local event list.
//
// Events are kept as one JSON document under a single key in a BlobStore.
// Backends are SQLite (default), Redis, PostgreSQL and memory.
package store

import (
	"context"
	"errors"
	"sync"
)

// EventsKey is the key the admin event list is stored under.
const EventsKey = "tg-events-v1"

// ErrBlobNotFound is returned by BlobStore.Get for unknown keys.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a small key/value persistence adapter.
type BlobStore interface {
	// Get returns the value stored under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Name identifies the backend in logs and health output.
	Name() string
	// Close releases backend resources.
	Close() error
}

// MemoryBlobStore keeps blobs in process memory.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get implements BlobStore.
func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements BlobStore.
func (m *MemoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

// Name implements BlobStore.
func (m *MemoryBlobStore) Name() string { return BackendMemory }

// Close implements BlobStore.
func (m *MemoryBlobStore) Close() error { return nil }
