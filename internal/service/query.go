// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the read-side business logic of the afisha:
// filtering, ordering and picking events for the public pages.
package service

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/model"
)

// Status selects events relative to the current day.
type Status string

// Status values accepted in the "status" query parameter.
const (
	StatusUpcoming Status = "upcoming"
	StatusPast     Status = "past"
	StatusAll      Status = "all"
)

// ParseStatus maps a request value to a Status. Unknown values select
// StatusAll.
func ParseStatus(s string) Status {
	switch Status(strings.TrimSpace(s)) {
	case StatusUpcoming:
		return StatusUpcoming
	case StatusPast:
		return StatusPast
	default:
		return StatusAll
	}
}

// Filter holds the list criteria entered on the home page.
type Filter struct {
	Text     string
	Category string
	Status   Status
}

// QueryService filters and orders event collections. It keeps no state
// between calls besides the display timezone.
type QueryService struct {
	loc *time.Location
}

// NewQueryService creates a query service that decides "today" in loc.
func NewQueryService(loc *time.Location) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryService{loc: loc}
}

// Location returns the timezone "today" is computed in.
func (s *QueryService) Location() *time.Location {
	return s.loc
}

// Query returns the events matching f, sorted by start. Upcoming and all
// are ascending, past is descending. Events with equal starts keep their
// input order. The input slice is not modified.
func (s *QueryService) Query(events []model.Event, f Filter, now time.Time) []model.Event {
	today := datetime.Today(now, s.loc)
	// Casers carry state and are not shared between requests.
	lower := cases.Lower(language.Russian)
	needle := lower.String(strings.TrimSpace(f.Text))
	status := ParseStatus(string(f.Status))

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !matchesText(lower, ev, needle) || !matchesCategory(ev, f.Category) {
			continue
		}
		if !matchesStatus(start(ev), today, status) {
			continue
		}
		out = append(out, ev)
	}

	slices.SortStableFunc(out, func(a, b model.Event) int {
		c := start(a).Compare(start(b))
		if status == StatusPast {
			return -c
		}
		return c
	})
	return out
}

// Featured returns the first upcoming event in ascending order.
func (s *QueryService) Featured(events []model.Event, now time.Time) (model.Event, bool) {
	upcoming := s.Query(events, Filter{Status: StatusUpcoming}, now)
	if len(upcoming) == 0 {
		return model.Event{}, false
	}
	return upcoming[0], true
}

// Categories returns "all" followed by every distinct non-empty category
// in order of first appearance.
func Categories(events []model.Event) []string {
	out := []string{model.CategoryAll}
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Category == "" {
			continue
		}
		if _, ok := seen[ev.Category]; ok {
			continue
		}
		seen[ev.Category] = struct{}{}
		out = append(out, ev.Category)
	}
	return out
}

func matchesText(lower cases.Caser, ev model.Event, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range ev.SearchFields() {
		if strings.Contains(lower.String(field), needle) {
			return true
		}
	}
	return false
}

func matchesCategory(ev model.Event, category string) bool {
	if category == "" || category == model.CategoryAll {
		return true
	}
	return ev.Category == category
}

func matchesStatus(start, today time.Time, status Status) bool {
	switch status {
	case StatusUpcoming:
		return !start.Before(today)
	case StatusPast:
		return start.Before(today)
	default:
		return true
	}
}

func start(ev model.Event) time.Time {
	return datetime.Parse(ev.Date, ev.StartTime)
}
