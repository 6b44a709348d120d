// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takigulyaki/afisha/internal/logging"
	"github.com/takigulyaki/afisha/internal/model"
)

func TestAdminListShowsSeededEvents(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Редактор афиши (локально)")
	assert.Contains(t, body, "Прогулка по Яффо")
	assert.Contains(t, body, `href="/admin/events/b/edit"`)
	assert.Contains(t, body, "Хранилище: memory")
	assert.Contains(t, body, `<meta name="robots" content="noindex,nofollow">`)
}

func TestAdminListShowsJournal(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin")
	assert.NotContains(t, rec.Body.String(), "Журнал предупреждений")

	logger := slog.New(logging.NewJournalHandler(slog.NewTextHandler(io.Discard, nil), s.journal))
	logger.Info("not journaled")
	logger.Warn("catalog refresh failed", "source", "events.json")

	rec = s.get("/admin")
	assert.Contains(t, rec.Body.String(), "Журнал предупреждений (1)")
	assert.Contains(t, rec.Body.String(), "catalog refresh failed")
	assert.Contains(t, rec.Body.String(), "source=events.json")
	assert.NotContains(t, rec.Body.String(), "not journaled")
}

func TestAdminNewFormDefaults(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin/events/new")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Новое событие")
	assert.Contains(t, body, `action="/admin/events"`)
	assert.Contains(t, body, `name="date" value="2024-03-15"`)
	assert.Contains(t, body, `name="startTime" value="18:00"`)
	assert.Contains(t, body, `name="endTime" value="19:00"`)
	assert.Contains(t, body, `name="category" value="Общее"`)
}

func TestAdminCreate(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.postForm("/admin/events", url.Values{
		"title":     {"  Новая встреча "},
		"date":      {"2024-03-25"},
		"startTime": {"18:00"},
		"category":  {"Встречи"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	events := s.events.List()
	require.Len(t, events, 4)
	assert.Equal(t, "Новая встреча", events[0].Title)
	assert.Equal(t, "новая-встреча", events[0].Slug)
	assert.Equal(t, "ev-1", events[0].ID)

	rec = s.get("/admin")
	assert.Contains(t, rec.Body.String(), "Событие добавлено")

	rec = s.get("/admin")
	assert.NotContains(t, rec.Body.String(), "Событие добавлено", "flash is shown once")
}

func TestAdminCreateInvalid(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "blank title",
			form:    url.Values{"title": {"   "}, "date": {"2024-03-25"}},
			message: "Введите название",
		},
		{
			name:    "missing date",
			form:    url.Values{"title": {"Встреча"}},
			message: "Выберите дату",
		},
		{
			name:    "slug in use",
			form:    url.Values{"title": {"Встреча"}, "date": {"2024-03-25"}, "slug": {"lekciya"}},
			message: msgSlugTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testEventsDocument)

			rec := s.postForm("/admin/events", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `action="/admin/events"`)
			assert.Len(t, s.events.List(), 3)
		})
	}
}

func TestAdminEditAndUpdate(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin/events/c/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/events/c"`)
	assert.Contains(t, rec.Body.String(), `name="title" value="Лекция о городе"`)

	rec = s.postForm("/admin/events/c", url.Values{
		"title":    {"Лекция о порте"},
		"date":     {"2024-04-02"},
		"slug":     {"lekciya"},
		"location": {"Хайфа"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	ev, ok := s.events.Get("c")
	require.True(t, ok)
	assert.Equal(t, "Лекция о порте", ev.Title)
	assert.Equal(t, "2024-04-02", ev.Date)
	assert.Equal(t, "lekciya", ev.Slug, "own slug stays valid")
	assert.Equal(t, "Хайфа", ev.Location)
	assert.Equal(t, "c", s.events.List()[2].ID, "position is kept")
}

func TestAdminUpdateErrors(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.postForm("/admin/events/c", url.Values{"title": {""}, "date": {"2024-04-02"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Введите название")

	rec = s.postForm("/admin/events/c", url.Values{"title": {"X"}, "date": {"2024-04-02"}, "slug": {"keramika"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSlugTaken)

	rec = s.postForm("/admin/events/zzz", url.Values{"title": {"X"}, "date": {"2024-04-02"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Событие не найдено.")

	rec = s.get("/admin/events/zzz/edit")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDelete(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin/events/b/delete")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Удалить мероприятие?")
	assert.Contains(t, rec.Body.String(), "Мастер-класс по керамике")

	// Without confirmation nothing changes.
	rec = s.postForm("/admin/events/b/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, s.events.List(), 3)
	assert.Contains(t, s.get("/admin").Body.String(), "Удаление отменено")

	rec = s.postForm("/admin/events/b/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := s.events.Get("b")
	assert.False(t, ok)
	assert.Len(t, s.events.List(), 2)

	rec = s.postForm("/admin/events/b/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.get("/admin/events/b/delete")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminExport(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	rec := s.get("/admin/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="events.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get(HeaderContentType), "application/json")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "[\n  {\n"), "indented with two spaces")

	var events []model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Equal(t, s.events.List(), events)
}

func uploadCalendar(t *testing.T, s *testServer, field, body string) *httptest.ResponseRecorder {
	t.Helper()
	return uploadFile(t, s, "/admin/import", field, "calendar.ics", body)
}

func uploadFile(t *testing.T, s *testServer, path, field, filename, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(HeaderContentType, mw.FormDataContentType())
	return s.do(req)
}

func TestAdminImport(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	doc := strings.Join([]string{
		"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN",
		"BEGIN:VEVENT", "UID:1", "DTSTAMP:20240101T000000Z",
		"SUMMARY:Пикник в парке", "DTSTART:20240406T120000", "DTEND:20240406T150000",
		"LOCATION:Парк Яркон", "END:VEVENT",
		"BEGIN:VEVENT", "UID:2", "DTSTAMP:20240101T000000Z",
		"DTSTART:20240407T120000", "END:VEVENT",
		"END:VCALENDAR", "",
	}, "\r\n")

	rec := uploadCalendar(t, s, "calendar", doc)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	events := s.events.List()
	require.Len(t, events, 4)
	assert.Equal(t, "Пикник в парке", events[0].Title)
	assert.Equal(t, "2024-04-06", events[0].Date)
	assert.Equal(t, "12:00", events[0].StartTime)
	assert.Equal(t, "15:00", events[0].EndTime)
	assert.Equal(t, "Парк Яркон", events[0].Location)
	assert.NotEmpty(t, events[0].Slug)

	assert.Contains(t, s.get("/admin").Body.String(), "Импортировано событий: 1, пропущено: 1")
}

func TestAdminImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		body    string
		message string
	}{
		{"no file", "", "", "Выберите файл .ics"},
		{"no events", "calendar", "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nEND:VCALENDAR\r\n", "В календаре нет событий"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testEventsDocument)

			rec := uploadCalendar(t, s, tt.field, tt.body)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Len(t, s.events.List(), 3)
			assert.Contains(t, s.get("/admin").Body.String(), tt.message)
		})
	}
}

func TestAdminWaitsForCatalog(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.get("/admin")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, loadingRetryAfter, rec.Header().Get("Retry-After"))

	rec = s.postForm("/admin/events", url.Values{"title": {"Раннее"}, "date": {"2024-03-20"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, s.events.Len())
	assert.True(t, s.events.Seed([]model.Event{{ID: "a", Title: "Из каталога", Date: "2024-03-20"}}),
		"the catalog can still seed the admin list")
}

func TestAdminRestore(t *testing.T) {
	s := newTestServer(t, testEventsDocument)

	doc := `[
  {"id": "x", "title": "Пикник", "date": "2024-05-01", "slug": "piknik"},
  {"title": "Лекция", "date": "2024-05-02"}
]`
	rec := uploadFile(t, s, "/admin/restore", "events", "events.json", doc)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	events := s.events.List()
	require.Len(t, events, 2)
	assert.Equal(t, "x", events[0].ID)
	assert.Equal(t, "piknik", events[0].Slug)
	assert.NotEmpty(t, events[1].ID)
	assert.Equal(t, "лекция", events[1].Slug)

	assert.Contains(t, s.get("/admin").Body.String(), "Загружено событий: 2")
}

func TestAdminRestoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		body    string
		message string
	}{
		{"no file", "", "", "Выберите файл events.json"},
		{"not json", "events", "{oops", "Не удалось прочитать events.json"},
		{"missing date", "events", `[{"title": "Без даты"}]`, "Файл не загружен: Выберите дату"},
		{"repeated id", "events", `[{"id": "a", "title": "A", "date": "2024-05-01"}, {"id": "a", "title": "B", "date": "2024-05-02"}]`,
			"id и слаги событий должны быть уникальными"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testEventsDocument)

			rec := uploadFile(t, s, "/admin/restore", tt.field, "events.json", tt.body)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Len(t, s.events.List(), 3)
			assert.Contains(t, s.get("/admin").Body.String(), tt.message)
		})
	}
}
