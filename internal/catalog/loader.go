// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog serves the published event list, read from a JSON
// document on disk or over HTTP.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/takigulyaki/afisha/internal/model"
)

// DefaultFetchTimeout bounds a single HTTP fetch of the source.
const DefaultFetchTimeout = 10 * time.Second

// maxDocumentSize caps the size of the events document.
const maxDocumentSize = 8 << 20

// Loader reads the events document from its source.
type Loader struct {
	source string
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a loader for source, a file path or an http(s) URL.
func NewLoader(source string, timeout time.Duration, logger *slog.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source: source,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Source returns the configured source.
func (l *Loader) Source() string {
	return l.source
}

// Fetch reads and decodes the document. It returns the decoded events and
// the raw bytes as read.
func (l *Loader) Fetch(ctx context.Context) ([]model.Event, []byte, error) {
	raw, err := l.read(ctx)
	if err != nil {
		return nil, nil, err
	}

	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", l.source, err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, raw, nil
}

// Load is Fetch that never fails: on any error it logs a warning and
// returns an empty list.
func (l *Loader) Load(ctx context.Context) ([]model.Event, []byte) {
	events, raw, err := l.Fetch(ctx)
	if err != nil {
		l.logger.Warn("events source unavailable, showing no events",
			"source", l.source, "error", err)
		return []model.Event{}, []byte("[]")
	}
	return events, raw
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.source == "" {
		return nil, errors.New("events source is not configured")
	}
	if isURL(l.source) {
		return l.fetchURL(ctx)
	}

	f, err := os.Open(l.source)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", l.source, err)
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(io.LimitReader(f, maxDocumentSize))
}

func (l *Loader) fetchURL(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", l.source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: %s", l.source, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.source, err)
	}
	return body, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
