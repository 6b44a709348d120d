// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package datetime turns the date and time strings stored on events into
// comparable instants and renders them for the Russian-language afisha.
//
// Event times are floating wall-clock values: "2024-03-15" + "18:30" means
// 18:30 on the organiser's calendar, without an attached offset. They are
// carried in time.UTC only as a container and are never converted.
package datetime

import (
	"strconv"
	"strings"
	"time"
)

// undatedYear is what a missing or unreadable year degrades to.
const undatedYear = 1

// Layouts shared by the encoders.
const (
	ISOLayout      = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	CalendarLayout = "20060102T150405"
)

// Parse combines a YYYY-MM-DD date and an optional HH:MM clock into a
// floating instant. It never fails: a missing clock means midnight,
// missing or non-numeric month and day become 1, hour and minute become 0,
// and a missing year becomes year 1 (see IsUndated). Out-of-range values
// roll over the way time.Date normalises them.
func Parse(date, clock string) time.Time {
	if clock == "" {
		clock = "00:00"
	}

	dateParts := strings.Split(date, "-")
	clockParts := strings.Split(clock, ":")

	year, ok := component(dateParts, 0)
	if !ok {
		year = undatedYear
	}
	month := componentOr(dateParts, 1, 1)
	day := componentOr(dateParts, 2, 1)
	hour := componentOr(clockParts, 0, 0)
	minute := componentOr(clockParts, 1, 0)

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

// component returns the numeric value of parts[i].
func component(parts []string, i int) (int, bool) {
	if i >= len(parts) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// componentOr returns parts[i] as a number, or def when it is missing,
// unreadable or zero.
func componentOr(parts []string, i, def int) int {
	n, ok := component(parts, i)
	if !ok || n == 0 {
		return def
	}
	return n
}

// IsUndated reports whether t came from a date without a usable year.
func IsUndated(t time.Time) bool {
	return t.Year() == undatedYear
}

// StartOfDay zeroes the clock part of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns the floating start of the calendar day that now falls on
// in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Floating re-labels the wall clock of t (as seen in loc) as a floating
// instant, so it can be compared with values returned by Parse.
func Floating(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}
