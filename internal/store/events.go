// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/util"
)

// Validation messages shown next to the admin form.
var (
	ErrTitleRequired = errors.New("Введите название")
	ErrDateRequired  = errors.New("Выберите дату")
)

// Store errors.
var (
	ErrNotFound     = errors.New("event not found")
	ErrSlugTaken    = errors.New("slug is already used by another event")
	ErrNotConfirmed = errors.New("deletion was not confirmed")
	ErrDuplicateID  = errors.New("event id is used more than once")
)

// fallbackSlug is used when a title has no slug characters at all.
const fallbackSlug = "event"

// ValidationError reports an invalid field of an event draft.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConfirmFunc is asked before an event is deleted. Returning false
// cancels the deletion.
type ConfirmFunc func(ev model.Event) bool

// Confirmed is a ConfirmFunc that always agrees.
func Confirmed(model.Event) bool { return true }

// EventStore is the admin's editable event list.
//
// Every successful mutation is written to the BlobStore before the method
// returns; a failed write leaves the in-memory list unchanged.
type EventStore struct {
	mu     sync.RWMutex
	events []model.Event
	blobs  BlobStore
	ids    model.IDGenerator
	logger *slog.Logger

	// stored is set once the list has been read from or written to blobs.
	stored bool
}

// Open loads the stored event list. When nothing has been stored yet, or
// the stored document is unreadable, the store starts from seed.
func Open(ctx context.Context, blobs BlobStore, seed []model.Event, ids model.IDGenerator, logger *slog.Logger) (*EventStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = model.UUIDGenerator{}
	}

	s := &EventStore{
		blobs:  blobs,
		ids:    ids,
		logger: logger,
	}

	data, err := blobs.Get(ctx, EventsKey)
	switch {
	case errors.Is(err, ErrBlobNotFound):
		s.events = s.identify(seed, nil)
	case err != nil:
		return nil, fmt.Errorf("loading events: %w", err)
	default:
		var stored []model.Event
		if err := json.Unmarshal(data, &stored); err != nil {
			logger.Warn("stored events are unreadable, starting from catalog", "error", err)
			s.events = s.identify(seed, nil)
		} else {
			s.events = s.identify(stored, nil)
			s.stored = true
		}
	}

	return s, nil
}

// Seed replaces the list with events unless a list has already been
// stored. Events without an id or slug get one; an id-less event whose slug
// was seeded before keeps the id it had. Seeding does not persist anything.
// It reports whether the seed was taken.
func (s *EventStore) Seed(events []model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stored {
		return false
	}
	s.events = s.identify(events, s.events)
	return true
}

// Len returns the number of events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// List returns a copy of the events in stored order.
func (s *EventStore) List() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Get returns the event with the given id.
func (s *EventStore) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return model.Event{}, false
}

// Create validates draft, assigns it a fresh id and a slug, and puts it
// first in the list.
func (s *EventStore) Create(ctx context.Context, draft model.Event) (model.Event, error) {
	ev, err := normalize(draft)
	if err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.ids.NewID()
	if ev.Slug, err = s.assignSlug(ev, ""); err != nil {
		return model.Event{}, err
	}

	next := make([]model.Event, 0, len(s.events)+1)
	next = append(next, ev)
	next = append(next, s.events...)
	if err := s.commit(ctx, next); err != nil {
		return model.Event{}, err
	}

	s.logger.Info("event created", "id", ev.ID, "slug", ev.Slug)
	return ev, nil
}

// Update replaces the event with ev.ID, keeping its position.
func (s *EventStore) Update(ctx context.Context, ev model.Event) (model.Event, error) {
	ev, err := normalize(ev)
	if err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ev.ID)
	if i < 0 {
		return model.Event{}, ErrNotFound
	}
	if ev.Slug, err = s.assignSlug(ev, ev.ID); err != nil {
		return model.Event{}, err
	}

	next := slices.Clone(s.events)
	next[i] = ev
	if err := s.commit(ctx, next); err != nil {
		return model.Event{}, err
	}

	s.logger.Info("event updated", "id", ev.ID, "slug", ev.Slug)
	return ev, nil
}

// Delete removes the event with the given id once confirm agrees. It
// reports whether the event was removed; a declined confirmation returns
// false with the list untouched.
func (s *EventStore) Delete(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil {
		return false, ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, ErrNotFound
	}
	if !confirm(s.events[i]) {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.events), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.logger.Info("event deleted", "id", id)
	return true, nil
}

// Import creates each draft in turn, so the last draft ends up first.
// Invalid drafts are skipped and counted.
func (s *EventStore) Import(ctx context.Context, drafts []model.Event) (created []model.Event, skipped int, err error) {
	for _, d := range drafts {
		ev, err := s.Create(ctx, d)
		var verr *ValidationError
		switch {
		case errors.As(err, &verr), errors.Is(err, ErrSlugTaken):
			skipped++
		case err != nil:
			return created, skipped, err
		default:
			created = append(created, ev)
		}
	}
	return created, skipped, nil
}

// Replace swaps the whole list, assigning ids and slugs where missing.
// Ids and explicit slugs must not repeat.
func (s *EventStore) Replace(ctx context.Context, events []model.Event) error {
	next := make([]model.Event, 0, len(events))
	ids := make(map[string]bool, len(events))
	slugs := make(map[string]bool, len(events))
	for _, ev := range events {
		ev, err := normalize(ev)
		if err != nil {
			return fmt.Errorf("event %q: %w", ev.Title, err)
		}
		if ev.ID != "" {
			if ids[ev.ID] {
				return fmt.Errorf("event %q: %w", ev.Title, ErrDuplicateID)
			}
			ids[ev.ID] = true
		}
		if ev.Slug != "" {
			if slugs[ev.Slug] {
				return fmt.Errorf("event %q: %w", ev.Title, ErrSlugTaken)
			}
			slugs[ev.Slug] = true
		}
		next = append(next, ev)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next = s.identify(next, nil)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.Info("events replaced", "count", len(next))
	return nil
}

// Export returns the list as an indented events.json document.
func (s *EventStore) Export() ([]byte, error) {
	s.mu.RLock()
	events := s.events
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("encoding events: %w", err)
	}
	return data, nil
}

// Backend names the persistence backend.
func (s *EventStore) Backend() string {
	return s.blobs.Name()
}

// Ping checks that the backend answers. A missing list is not an error.
func (s *EventStore) Ping(ctx context.Context) error {
	_, err := s.blobs.Get(ctx, EventsKey)
	if err != nil && !errors.Is(err, ErrBlobNotFound) {
		return fmt.Errorf("reading %s from %s: %w", EventsKey, s.blobs.Name(), err)
	}
	return nil
}

// commit persists next and makes it current. Callers hold s.mu.
func (s *EventStore) commit(ctx context.Context, next []model.Event) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	if err := s.blobs.Set(ctx, EventsKey, data); err != nil {
		return fmt.Errorf("saving events: %w", err)
	}
	s.events = next
	s.stored = true
	return nil
}

// identify returns a copy of events where every event has a slug and a
// unique id. Missing slugs are derived from the title. A missing id is taken
// from the prev event with the same slug, or generated.
func (s *EventStore) identify(events, prev []model.Event) []model.Event {
	out := slices.Clone(events)
	for i := range out {
		if out[i].Slug == "" {
			out[i].Slug = uniqueSlug(out, derivedSlug(out[i].Title), "")
		}
	}

	known := make(map[string]string, len(prev))
	for _, ev := range prev {
		if ev.ID != "" && ev.Slug != "" {
			known[ev.Slug] = ev.ID
		}
	}
	seen := make(map[string]bool, len(out))
	for i := range out {
		id := out[i].ID
		if id == "" {
			id = known[out[i].Slug]
		}
		if id == "" || seen[id] {
			id = s.ids.NewID()
		}
		out[i].ID = id
		seen[id] = true
	}
	return out
}

func (s *EventStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.events, func(ev model.Event) bool { return ev.ID == id })
}

// assignSlug returns the slug ev should be stored with. An explicit slug
// must be free; a derived one gets a numeric suffix until it is.
func (s *EventStore) assignSlug(ev model.Event, selfID string) (string, error) {
	if ev.Slug != "" {
		if slugTaken(s.events, ev.Slug, selfID) {
			return "", ErrSlugTaken
		}
		return ev.Slug, nil
	}
	return uniqueSlug(s.events, derivedSlug(ev.Title), selfID), nil
}

func uniqueSlug(events []model.Event, base, selfID string) string {
	slug := base
	for n := 2; slugTaken(events, slug, selfID); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}

func slugTaken(events []model.Event, slug, selfID string) bool {
	for _, ev := range events {
		if ev.Slug == slug && (selfID == "" || ev.ID != selfID) {
			return true
		}
	}
	return false
}

func derivedSlug(title string) string {
	if slug := util.Slugify(title); slug != "" {
		return slug
	}
	return fallbackSlug
}

// normalize trims the draft and checks the required fields.
func normalize(ev model.Event) (model.Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Date = strings.TrimSpace(ev.Date)
	ev.StartTime = strings.TrimSpace(ev.StartTime)
	ev.EndTime = strings.TrimSpace(ev.EndTime)
	ev.Location = strings.TrimSpace(ev.Location)
	ev.URL = strings.TrimSpace(ev.URL)
	ev.Category = strings.TrimSpace(ev.Category)
	ev.Image = strings.TrimSpace(ev.Image)
	ev.Slug = util.Slugify(ev.Slug)

	if ev.Title == "" {
		return ev, &ValidationError{Field: "title", Err: ErrTitleRequired}
	}
	if ev.Date == "" {
		return ev, &ValidationError{Field: "date", Err: ErrDateRequired}
	}
	return ev, nil
}
