// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/ics"
	"github.com/takigulyaki/afisha/internal/logging"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/render"
	"github.com/takigulyaki/afisha/internal/store"
)

// Defaults of a new event form.
const (
	defaultStartTime = "18:00"
	defaultEndTime   = "19:00"
)

// AdminListData holds the data of the admin list page.
type AdminListData struct {
	Events  []model.Event
	Backend string
	Journal []logging.Entry
}

// AdminFormData holds the data of the event form.
type AdminFormData struct {
	IsNew  bool
	Error  string
	Action string
	Event  model.Event
}

// AdminHandler handles the local event editor.
type AdminHandler struct {
	renderer *render.Renderer
	events   *store.EventStore
	importer *ics.Importer
	journal  *logging.Journal
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminHandler creates a new AdminHandler. journal may be nil.
func NewAdminHandler(renderer *render.Renderer, events *store.EventStore, journal *logging.Journal, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		renderer: renderer,
		events:   events,
		importer: ics.NewImporter(renderer.Formatter().Location()),
		journal:  journal,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for new event defaults.
func (h *AdminHandler) SetClock(now func() time.Time) {
	h.now = now
}

// List handles GET /admin.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	data := AdminListData{
		Events:  h.events.List(),
		Backend: h.events.Backend(),
	}
	if h.journal != nil {
		data.Journal = h.journal.Entries()
	}

	renderPage(w, r, h.renderer, http.StatusOK, tmplAdminList, render.TemplateData{
		Title: "Редактор афиши",
		Data:  data,
	})
}

// NewForm handles GET /admin/events/new.
func (h *AdminHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	today := datetime.Today(h.now(), h.renderer.Formatter().Location())
	h.renderForm(w, r, http.StatusOK, AdminFormData{
		IsNew:  true,
		Action: redirectAdminEvents,
		Event: model.Event{
			Date:      today.Format(time.DateOnly),
			StartTime: defaultStartTime,
			EndTime:   defaultEndTime,
			Category:  model.DefaultCategory,
		},
	})
}

// Create handles POST /admin/events.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdmin, msgInvalidForm)
		return
	}

	draft := eventFromForm(r)
	ev, err := h.events.Create(r.Context(), draft)
	if err != nil {
		h.handleSaveError(w, r, err, AdminFormData{IsNew: true, Action: redirectAdminEvents, Event: draft})
		return
	}

	h.logger.Info("event created", "id", ev.ID, "title", ev.Title)
	flashSuccess(w, r, h.renderer, redirectAdmin, "Событие добавлено")
}

// EditForm handles GET /admin/events/{id}/edit.
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventByID(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, AdminFormData{
		Action: eventAction(ev.ID),
		Event:  ev,
	})
}

// Update handles POST /admin/events/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdmin, msgInvalidForm)
		return
	}

	ev := eventFromForm(r)
	ev.ID = chi.URLParam(r, "id")

	updated, err := h.events.Update(r.Context(), ev)
	if err != nil {
		h.handleSaveError(w, r, err, AdminFormData{Action: eventAction(ev.ID), Event: ev})
		return
	}

	h.logger.Info("event updated", "id", updated.ID, "title", updated.Title)
	flashSuccess(w, r, h.renderer, redirectAdmin, "Изменения сохранены")
}

// ConfirmDelete handles GET /admin/events/{id}/delete.
func (h *AdminHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventByID(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, tmplAdminDelete, render.TemplateData{
		Title: "Удалить мероприятие?",
		Data:  ev,
	})
}

// Delete handles POST /admin/events/{id}/delete. Nothing is removed unless
// the form carries confirm=yes.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdmin, msgInvalidForm)
		return
	}

	id := chi.URLParam(r, "id")
	confirmed := r.PostFormValue("confirm") == "yes"

	removed, err := h.events.Delete(r.Context(), id, func(model.Event) bool { return confirmed })
	switch {
	case errors.Is(err, store.ErrNotFound):
		renderNotFound(w, r, h.renderer, msgEventNotFound)
	case err != nil:
		logAndInternalError(w, "failed to delete event", "error", err, "id", id)
	case !removed:
		flashAndRedirect(w, r, h.renderer, redirectAdmin, "Удаление отменено", "info")
	default:
		flashSuccess(w, r, h.renderer, redirectAdmin, "Событие удалено")
	}
}

func (h *AdminHandler) eventByID(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	ev, ok := h.events.Get(chi.URLParam(r, "id"))
	if !ok {
		renderNotFound(w, r, h.renderer, msgEventNotFound)
	}
	return ev, ok
}

// handleSaveError re-renders the form for input errors and fails the
// request otherwise.
func (h *AdminHandler) handleSaveError(w http.ResponseWriter, r *http.Request, err error, data AdminFormData) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Error = verr.Error()
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
	case errors.Is(err, store.ErrSlugTaken):
		data.Error = msgSlugTaken
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
	case errors.Is(err, store.ErrNotFound):
		renderNotFound(w, r, h.renderer, msgEventNotFound)
	default:
		logAndInternalError(w, "failed to save event", "error", err, "id", data.Event.ID)
	}
}

func (h *AdminHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data AdminFormData) {
	title := "Редактирование"
	if data.IsNew {
		title = "Новое событие"
	}
	renderPage(w, r, h.renderer, status, tmplAdminForm, render.TemplateData{
		Title: title,
		Data:  data,
	})
}

func eventAction(id string) string {
	return redirectAdminEvents + "/" + id
}

// eventFromForm reads the editable event fields from a parsed form.
func eventFromForm(r *http.Request) model.Event {
	return model.Event{
		Title:       r.PostFormValue("title"),
		Slug:        r.PostFormValue("slug"),
		Date:        r.PostFormValue("date"),
		StartTime:   r.PostFormValue("startTime"),
		EndTime:     r.PostFormValue("endTime"),
		Location:    r.PostFormValue("location"),
		URL:         r.PostFormValue("url"),
		Category:    r.PostFormValue("category"),
		Image:       r.PostFormValue("image"),
		Description: r.PostFormValue("description"),
	}
}
