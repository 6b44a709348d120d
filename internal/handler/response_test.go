// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAttachment(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		ext      string
		fallback string
		want     string
	}{
		{
			name: "ascii name",
			slug: "events", ext: ".json", fallback: "events",
			want: `attachment; filename="events.json"`,
		},
		{
			name: "cyrillic name",
			slug: "прогулка", ext: ".ics", fallback: "event",
			want: `attachment; filename="progulka.ics"; filename*=UTF-8''%D0%BF%D1%80%D0%BE%D0%B3%D1%83%D0%BB%D0%BA%D0%B0.ics`,
		},
		{
			name: "empty name",
			slug: "", ext: ".ics", fallback: "event",
			want: `attachment; filename="event.ics"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setAttachment(rec, tt.slug, tt.ext, tt.fallback)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Disposition"))
		})
	}
}
