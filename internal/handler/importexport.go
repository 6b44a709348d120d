// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/takigulyaki/afisha/internal/ics"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/store"
)

// maxImportUploadBytes caps the size of an uploaded calendar.
const maxImportUploadBytes int64 = 5 << 20 // 5 MB

// Export handles GET /admin/export - downloads the admin list as events.json.
func (h *AdminHandler) Export(w http.ResponseWriter, _ *http.Request) {
	data, err := h.events.Export()
	if err != nil {
		logAndInternalError(w, "failed to export events", "error", err)
		return
	}

	w.Header().Set(HeaderContentType, "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	setAttachment(w, "events", ".json", "events")
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("writing export failed", "error", err)
	}
}

// Import handles POST /admin/import - creates events from an uploaded
// .ics file in the "calendar" field.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportUploadBytes)
	if err := r.ParseMultipartForm(maxImportUploadBytes); err != nil {
		flashError(w, r, h.renderer, redirectAdmin,
			fmt.Sprintf("Файл слишком большой или повреждён (максимум %d МБ)", maxImportUploadBytes>>20))
		return
	}

	file, header, err := r.FormFile("calendar")
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Выберите файл .ics")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.importer.Parse(file)
	switch {
	case errors.Is(err, ics.ErrEmptyCalendar):
		flashError(w, r, h.renderer, redirectAdmin, "В календаре нет событий")
		return
	case err != nil:
		h.logger.Warn("calendar import failed", "file", header.Filename, "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "Не удалось прочитать календарь")
		return
	}

	created, skipped, err := h.events.Import(r.Context(), result.Events)
	if err != nil {
		logAndInternalError(w, "failed to store imported events", "error", err, "file", header.Filename)
		return
	}
	skipped += result.Skipped

	h.logger.Info("calendar imported", "file", header.Filename, "created", len(created), "skipped", skipped)
	flashSuccess(w, r, h.renderer, redirectAdmin,
		fmt.Sprintf("Импортировано событий: %d, пропущено: %d", len(created), skipped))
}

// Restore handles POST /admin/restore - replaces the admin list with an
// uploaded events.json in the "events" field.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportUploadBytes)
	if err := r.ParseMultipartForm(maxImportUploadBytes); err != nil {
		flashError(w, r, h.renderer, redirectAdmin,
			fmt.Sprintf("Файл слишком большой или повреждён (максимум %d МБ)", maxImportUploadBytes>>20))
		return
	}

	file, header, err := r.FormFile("events")
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Выберите файл events.json")
		return
	}
	defer func() { _ = file.Close() }()

	var events []model.Event
	if err := json.NewDecoder(file).Decode(&events); err != nil {
		h.logger.Warn("events.json upload failed", "file", header.Filename, "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "Не удалось прочитать events.json")
		return
	}

	err = h.events.Replace(r.Context(), events)
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		flashError(w, r, h.renderer, redirectAdmin, "Файл не загружен: "+verr.Error())
		return
	case errors.Is(err, store.ErrDuplicateID), errors.Is(err, store.ErrSlugTaken):
		flashError(w, r, h.renderer, redirectAdmin, "Файл не загружен: id и слаги событий должны быть уникальными")
		return
	case err != nil:
		logAndInternalError(w, "failed to replace events", "error", err, "file", header.Filename)
		return
	}

	h.logger.Info("events replaced from upload", "file", header.Filename, "events", len(events))
	flashSuccess(w, r, h.renderer, redirectAdmin, fmt.Sprintf("Загружено событий: %d", len(events)))
}
