// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datetime

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata" // display timezone must load on hosts without zoneinfo

	"github.com/takigulyaki/afisha/internal/model"
)

// DisplayLocale is the only locale the site renders.
const DisplayLocale = "ru-RU"

// DefaultTimezone is the display timezone of the afisha.
const DefaultTimezone = "Asia/Jerusalem"

// Russian calendar names in the forms ru-RU uses inside a date.
var (
	weekdaysShort = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

	monthsGenitive = [...]string{
		"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	}

	monthsShort = [...]string{
		"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
		"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
	}
)

// Formatter renders event dates for display in a fixed locale and
// timezone. The zero value is not usable; use NewFormatter.
type Formatter struct {
	loc *time.Location
}

// NewFormatter returns a Formatter for the IANA timezone tz.
// An empty tz selects DefaultTimezone.
func NewFormatter(tz string) (*Formatter, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return &Formatter{loc: loc}, nil
}

// Location returns the display timezone.
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// Locale returns the display locale.
func (f *Formatter) Locale() string {
	return DisplayLocale
}

// FormatDateTime renders "пт, 15 марта 2024 г., 18:00—19:30".
// The end time is omitted when endTime is empty. Undated values render as "".
func (f *Formatter) FormatDateTime(date, startTime, endTime string) string {
	start := Parse(date, startTime)
	if IsUndated(start) {
		return ""
	}
	out := f.longDate(start) + ", " + clock(start)
	if endTime != "" {
		out += "—" + clock(Parse(date, endTime))
	}
	return out
}

// FormatForList renders the compact "15 мар." label used on cards, or ""
// for an undated value.
func (f *Formatter) FormatForList(date string) string {
	d := Parse(date, DefaultClock)
	if IsUndated(d) {
		return ""
	}
	return twoDigits(d.Day()) + " " + monthsShort[d.Month()-1]
}

// DefaultClock is the clock FormatForList parses dates with.
const DefaultClock = "00:00"

// Event is FormatDateTime applied to an event.
func (f *Formatter) Event(ev model.Event) string {
	return f.FormatDateTime(ev.Date, ev.StartTime, ev.EndTime)
}

// ListLabel is FormatForList applied to an event.
func (f *Formatter) ListLabel(ev model.Event) string {
	return f.FormatForList(ev.Date)
}

func (f *Formatter) longDate(t time.Time) string {
	return fmt.Sprintf("%s, %s %s %d г.",
		weekdaysShort[t.Weekday()], twoDigits(t.Day()), monthsGenitive[t.Month()-1], t.Year())
}

func clock(t time.Time) string {
	return twoDigits(t.Hour()) + ":" + twoDigits(t.Minute())
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
