// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takigulyaki/afisha/internal/model"
)

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("")
	require.NoError(t, err)
	return f
}

func TestNewFormatter(t *testing.T) {
	f := newTestFormatter(t)
	assert.Equal(t, DefaultTimezone, f.Location().String())
	assert.Equal(t, "ru-RU", f.Locale())

	_, err := NewFormatter("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestFormatDateTime(t *testing.T) {
	f := newTestFormatter(t)

	tests := []struct {
		name  string
		date  string
		start string
		end   string
		want  string
	}{
		{"start and end", "2024-03-15", "18:00", "19:30", "пт, 15 марта 2024 г., 18:00—19:30"},
		{"no end", "2024-03-15", "18:00", "", "пт, 15 марта 2024 г., 18:00"},
		{"no start", "2024-05-01", "", "", "ср, 01 мая 2024 г., 00:00"},
		{"sunday in december", "2023-12-31", "09:05", "", "вс, 31 декабря 2023 г., 09:05"},
		{"day first", "15.03.2024", "18:00", "", ""},
		{"empty date", "", "18:00", "19:00", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatDateTime(tt.date, tt.start, tt.end))
		})
	}
}

func TestFormatDateTimeIndependentOfLocalZone(t *testing.T) {
	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	f := newTestFormatter(t)
	want := f.FormatDateTime("2024-03-15", "18:00", "19:30")

	for _, zone := range []*time.Location{time.UTC, time.FixedZone("west", -8*3600), time.FixedZone("east", 9*3600)} {
		time.Local = zone
		got := f.FormatDateTime("2024-03-15", "18:00", "19:30")
		assert.Equal(t, want, got)
		assert.Contains(t, got, "18:00—19:30")
	}
}

func TestFormatForList(t *testing.T) {
	f := newTestFormatter(t)

	assert.Equal(t, "15 мар.", f.FormatForList("2024-03-15"))
	assert.Equal(t, "01 мая", f.FormatForList("2024-05-01"))
	assert.Equal(t, "09 сент.", f.FormatForList("2024-09-09"))
	assert.Empty(t, f.FormatForList(""))
	assert.Empty(t, f.FormatForList("15.03.2024"))
}

func TestFormatterEventHelpers(t *testing.T) {
	f := newTestFormatter(t)
	ev := model.Event{Date: "2024-03-15", StartTime: "10:00", EndTime: "11:00"}

	assert.Equal(t, "пт, 15 марта 2024 г., 10:00—11:00", f.Event(ev))
	assert.Equal(t, "15 мар.", f.ListLabel(ev))
}
