// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/takigulyaki/afisha/internal/model"
)

// Snapshot is one loaded version of the events document.
type Snapshot struct {
	Events   []model.Event
	Raw      []byte
	LoadedAt time.Time
}

// Catalog holds the current snapshot. Readers never block on a reload.
type Catalog struct {
	loader  *Loader
	logger  *slog.Logger
	current atomic.Pointer[Snapshot]

	// refreshMu serialises reloads.
	refreshMu sync.Mutex
	onLoad    []func(Snapshot)
}

// New creates an empty, not yet loaded catalog.
func New(loader *Loader, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{loader: loader, logger: logger}
}

// OnLoad registers fn to run after every successful swap. Register hooks
// before the first Refresh.
func (c *Catalog) OnLoad(fn func(Snapshot)) {
	c.onLoad = append(c.onLoad, fn)
}

// Loaded reports whether the first load has finished.
func (c *Catalog) Loaded() bool {
	return c.current.Load() != nil
}

// Snapshot returns the current snapshot, or nil before the first load.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Events returns a copy of the current events.
func (c *Catalog) Events() []model.Event {
	snap := c.current.Load()
	if snap == nil {
		return nil
	}
	return slices.Clone(snap.Events)
}

// Raw returns the document as it was read from the source.
func (c *Catalog) Raw() []byte {
	snap := c.current.Load()
	if snap == nil {
		return nil
	}
	return snap.Raw
}

// BySlug returns the first event with the given slug.
func (c *Catalog) BySlug(slug string) (model.Event, bool) {
	snap := c.current.Load()
	if snap == nil || slug == "" {
		return model.Event{}, false
	}
	for _, ev := range snap.Events {
		if ev.Slug == slug {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Refresh reads the source and swaps in the new snapshot. The first load
// always produces a snapshot, empty when the source is unavailable. Later
// failures keep the previous snapshot.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	var snap Snapshot
	if c.Loaded() {
		events, raw, err := c.loader.Fetch(ctx)
		if err != nil {
			c.logger.Warn("catalog refresh failed, keeping previous events",
				"source", c.loader.Source(), "error", err)
			return err
		}
		snap = Snapshot{Events: events, Raw: raw}
	} else {
		snap.Events, snap.Raw = c.loader.Load(ctx)
	}
	snap.LoadedAt = time.Now()

	c.current.Store(&snap)
	c.logger.Info("catalog loaded", "source", c.loader.Source(), "events", len(snap.Events))

	for _, fn := range c.onLoad {
		fn(snap)
	}
	return nil
}

// LoadInBackground starts the first load without blocking the caller.
// The returned channel is closed once the catalog is loaded.
func (c *Catalog) LoadInBackground(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Refresh(ctx)
	}()
	return done
}
