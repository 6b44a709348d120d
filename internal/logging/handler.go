// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application's slog handlers. Records at WARN
// and above are also kept in an in-memory Journal shown on the admin page.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ParseLevel maps a TG_LOG_LEVEL value to a slog.Level. Unknown values
// select info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler returns a text handler in development and a JSON handler
// otherwise.
func NewHandler(w io.Writer, development bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if development {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Entry is one journaled log record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]string
}

// DefaultJournalSize is the number of entries a Journal keeps.
const DefaultJournalSize = 50

// Journal is a fixed-size ring of recent log entries.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	total   int
}

// NewJournal returns a Journal holding up to size entries.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{entries: make([]Entry, size)}
}

func (j *Journal) add(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
	j.total++
}

// Entries returns the kept entries, newest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := j.next
	if j.full {
		n = len(j.entries)
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (j.next - i + len(j.entries)) % len(j.entries)
		out = append(out, j.entries[idx])
	}
	return out
}

// Total returns how many entries were ever added.
func (j *Journal) Total() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.total
}

// JournalHandler is a slog.Handler that wraps another handler and also
// records WARN and ERROR level logs in a Journal.
type JournalHandler struct {
	inner   slog.Handler
	journal *Journal
	level   slog.Level // Minimum level to journal (default: WARN)
	attrs   []slog.Attr
	group   string
}

// NewJournalHandler creates a JournalHandler that wraps the given handler.
func NewJournalHandler(inner slog.Handler, journal *Journal) *JournalHandler {
	return NewJournalHandlerWithLevel(inner, journal, slog.LevelWarn)
}

// NewJournalHandlerWithLevel creates a JournalHandler with a custom minimum level.
func NewJournalHandlerWithLevel(inner slog.Handler, journal *Journal, level slog.Level) *JournalHandler {
	return &JournalHandler{
		inner:   inner,
		journal: journal,
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *JournalHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *JournalHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.journal.add(h.entry(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	if name != "" {
		if clone.group != "" {
			clone.group += "."
		}
		clone.group += name
	}
	return &clone
}

func (h *JournalHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// entry converts a record into a journal entry.
func (h *JournalHandler) entry(r slog.Record) Entry {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}

	attrs := append([]slog.Attr(nil), h.attrs...)
	var own []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})
	attrs = append(attrs, h.qualify(own)...)

	if len(attrs) > 0 {
		e.Attrs = make(map[string]string, len(attrs))
		for _, a := range attrs {
			e.Attrs[a.Key] = a.Value.String()
		}
	}
	return e
}
