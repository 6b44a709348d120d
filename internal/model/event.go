// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Category values with special meaning.
const (
	// CategoryAll is the filter value that matches every category.
	CategoryAll = "all"
	// DefaultCategory is shown for events without a category.
	DefaultCategory = "Общее"
)

// DefaultStartTime is assumed when an event has no start time.
const DefaultStartTime = "00:00"

// Event is a single scheduled happening on the afisha.
// The JSON shape matches the events.json document served to the site.
type Event struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

// Start returns the start time, defaulting to midnight.
func (e Event) Start() string {
	if strings.TrimSpace(e.StartTime) == "" {
		return DefaultStartTime
	}
	return e.StartTime
}

// HasEnd reports whether the event has an end time.
func (e Event) HasEnd() bool {
	return strings.TrimSpace(e.EndTime) != ""
}

// CategoryLabel returns the category for display.
func (e Event) CategoryLabel() string {
	if e.Category == "" {
		return DefaultCategory
	}
	return e.Category
}

// SearchFields returns the fields free-text search looks at.
func (e Event) SearchFields() []string {
	return []string{e.Title, e.Description, e.Location, e.Category}
}
