// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/model"
)

// ErrEmptyCalendar is returned when a calendar has no VEVENT at all.
var ErrEmptyCalendar = errors.New("calendar contains no events")

// ImportResult is the outcome of reading an uploaded calendar.
type ImportResult struct {
	Events  []model.Event
	Skipped int
}

// Importer turns VEVENTs into event drafts. Times carrying a UTC "Z"
// suffix are moved to the display timezone; everything else is taken as
// wall-clock time.
type Importer struct {
	loc *time.Location
}

// NewImporter returns an Importer for the given display timezone.
func NewImporter(loc *time.Location) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{loc: loc}
}

// Parse reads a calendar document. VEVENTs without SUMMARY or a readable
// DTSTART are skipped and counted in ImportResult.Skipped. Drafts carry
// no id or slug; the store assigns those.
func (im *Importer) Parse(r io.Reader) (ImportResult, error) {
	var res ImportResult

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return res, fmt.Errorf("parsing calendar: %w", err)
	}

	vevents := cal.Events()
	if len(vevents) == 0 {
		return res, ErrEmptyCalendar
	}

	for _, ve := range vevents {
		ev, ok := im.draft(ve)
		if !ok {
			res.Skipped++
			continue
		}
		res.Events = append(res.Events, ev)
	}
	return res, nil
}

func (im *Importer) draft(ve *ical.VEvent) (model.Event, bool) {
	var ev model.Event

	ev.Title = strings.TrimSpace(textProp(ve, ical.ComponentPropertySummary))
	if ev.Title == "" {
		return ev, false
	}
	ev.Description = textProp(ve, ical.ComponentPropertyDescription)
	ev.Location = textProp(ve, ical.ComponentPropertyLocation)
	// URL is a URI value, which the parser leaves escaped.
	ev.URL = ical.FromText(textProp(ve, ical.ComponentPropertyUrl))

	start, allDay, ok := im.timeProp(ve, ical.ComponentPropertyDtStart)
	if !ok {
		return ev, false
	}
	ev.Date = start.Format(datetime.DateLayout)
	if !allDay {
		ev.StartTime = start.Format(datetime.ClockLayout)
	}

	// Multi-day events keep their start only.
	if end, endAllDay, ok := im.timeProp(ve, ical.ComponentPropertyDtEnd); ok && !allDay && !endAllDay {
		if end.Format(datetime.DateLayout) == ev.Date && end.After(start) {
			ev.EndTime = end.Format(datetime.ClockLayout)
		}
	}

	return ev, true
}

// textProp returns a property value. TEXT values arrive already unescaped.
func textProp(ve *ical.VEvent, prop ical.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// timeProp reads a DATE or DATE-TIME property as a floating value.
func (im *Importer) timeProp(ve *ical.VEvent, prop ical.ComponentProperty) (time.Time, bool, bool) {
	p := ve.GetProperty(prop)
	if p == nil {
		return time.Time{}, false, false
	}
	val := strings.TrimSpace(p.Value)

	if t, err := time.Parse(stampLayout, val); err == nil {
		return datetime.Floating(t, im.loc), false, true
	}
	if t, err := time.Parse(datetime.CalendarLayout, val); err == nil {
		return t, false, true
	}
	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
