// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ics writes single-event iCalendar (RFC 5545) documents for the
// "add to calendar" downloads and reads uploaded calendars back into
// event drafts.
package ics

import (
	"strings"
	"time"

	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/util"
)

// DefaultProductID identifies the afisha in PRODID.
const DefaultProductID = "-//TakiGulyaki//RU//EN"

// ContentType is the MIME type of encoded documents.
const ContentType = "text/calendar; charset=utf-8"

// stampLayout formats DTSTAMP in UTC.
const stampLayout = "20060102T150405Z"

// lineBreak terminates content lines.
const lineBreak = "\r\n"

// textEscaper escapes TEXT values. Backslashes are handled in the same
// pass as the other characters, so escapes are never escaped twice.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r\n", `\n`,
	"\r", `\n`,
	"\n", `\n`,
	",", `\,`,
	";", `\;`,
)

// EscapeText escapes a free-text property value.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// Encoder builds calendar documents. Now and IDs are injectable so tests
// can pin DTSTAMP and generated UIDs.
type Encoder struct {
	ProductID string
	Now       func() time.Time
	IDs       model.IDGenerator
}

// NewEncoder returns an Encoder using the wall clock and ids for events
// that have no id of their own.
func NewEncoder(ids model.IDGenerator) *Encoder {
	if ids == nil {
		ids = model.UUIDGenerator{}
	}
	return &Encoder{
		ProductID: DefaultProductID,
		Now:       time.Now,
		IDs:       ids,
	}
}

// Build encodes ev as a calendar with one VEVENT.
//
// DTSTART and DTEND are floating local times. Without an end time DTEND
// equals DTSTART. LOCATION, DESCRIPTION and URL appear only when set.
func (e *Encoder) Build(ev model.Event) string {
	uid := ev.ID
	if uid == "" {
		uid = e.IDs.NewID()
	}

	start := floating(ev.Date, ev.Start())
	end := start
	if ev.HasEnd() {
		end = floating(ev.Date, ev.EndTime)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + e.productID(),
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + e.now().UTC().Format(stampLayout),
		"DTSTART:" + start,
		"DTEND:" + end,
		"SUMMARY:" + EscapeText(ev.Title),
	}
	if ev.Location != "" {
		lines = append(lines, "LOCATION:"+EscapeText(ev.Location))
	}
	if ev.Description != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeText(ev.Description))
	}
	if ev.URL != "" {
		lines = append(lines, "URL:"+EscapeText(ev.URL))
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	return strings.Join(lines, lineBreak)
}

func (e *Encoder) productID() string {
	if e.ProductID == "" {
		return DefaultProductID
	}
	return e.ProductID
}

func (e *Encoder) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// floating formats date+clock as YYYYMMDDTHHMMSS without a zone suffix.
func floating(date, clock string) string {
	return datetime.Parse(date, clock).Format(datetime.CalendarLayout)
}

// Filename is the download name of an event's calendar file.
func Filename(ev model.Event) string {
	slug := util.Slugify(ev.Title)
	if slug == "" {
		slug = "event"
	}
	return slug + ".ics"
}
