// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers of the afisha: the public
// event pages, the local admin editor and the health checks.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/takigulyaki/afisha/internal/catalog"
	"github.com/takigulyaki/afisha/internal/ics"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/render"
	"github.com/takigulyaki/afisha/internal/seo"
	"github.com/takigulyaki/afisha/internal/service"
)

// loadingRetryAfter is the Retry-After value sent while the catalog loads.
const loadingRetryAfter = "2"

// StatusOption is one entry of the status select on the home page.
type StatusOption struct {
	Value    service.Status
	Label    string
	Selected bool
}

// HomeData holds the data of the home page.
type HomeData struct {
	Featured   *model.Event
	Events     []model.Event
	Total      int
	Categories []string
	Filter     service.Filter
	Statuses   []StatusOption
}

// FrontendHandler serves the public pages built from the event catalog.
type FrontendHandler struct {
	renderer *render.Renderer
	catalog  *catalog.Catalog
	query    *service.QueryService
	encoder  *ics.Encoder
	logger   *slog.Logger
	now      func() time.Time

	robots seo.RobotsConfig
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer, cat *catalog.Catalog, query *service.QueryService, encoder *ics.Encoder, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		renderer: renderer,
		catalog:  cat,
		query:    query,
		encoder:  encoder,
		logger:   logger,
		now:      time.Now,
		robots:   seo.RobotsConfig{SiteURL: renderer.Site().Origin()},
	}
}

// SetClock replaces the clock used to decide "today".
func (h *FrontendHandler) SetClock(now func() time.Time) {
	h.now = now
}

// SetRobots replaces the robots.txt settings. The sitemap reference always
// points at the configured site.
func (h *FrontendHandler) SetRobots(cfg seo.RobotsConfig) {
	cfg.SiteURL = h.renderer.Site().Origin()
	h.robots = cfg
}

// ready renders the loading view and returns false until the first catalog
// load has finished.
func (h *FrontendHandler) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.catalog.Loaded() {
		return true
	}
	w.Header().Set("Retry-After", loadingRetryAfter)
	renderPage(w, r, h.renderer, http.StatusServiceUnavailable, tmplLoading, render.TemplateData{
		Title: "Загрузка…",
	})
	return false
}

// RequireCatalog serves the loading view instead of next until the first
// catalog load has finished.
func (h *FrontendHandler) RequireCatalog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ready(w, r) {
			next.ServeHTTP(w, r)
		}
	})
}

// Home handles GET / - the hero, the featured event and the filtered grid.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	q := r.URL.Query()
	filter := service.Filter{
		Text:     q.Get("q"),
		Category: strings.TrimSpace(q.Get("category")),
		Status:   service.StatusUpcoming,
	}
	if filter.Category == "" {
		filter.Category = model.CategoryAll
	}
	if q.Has("status") {
		filter.Status = service.ParseStatus(q.Get("status"))
	}

	now := h.now()
	events := h.catalog.Events()

	data := HomeData{
		Events:     h.query.Query(events, filter, now),
		Total:      len(events),
		Categories: service.Categories(events),
		Filter:     filter,
		Statuses:   statusOptions(filter.Status),
	}
	if featured, ok := h.query.Featured(events, now); ok {
		data.Featured = &featured
	}

	site := h.renderer.Site()
	renderPage(w, r, h.renderer, http.StatusOK, tmplHome, render.TemplateData{
		Title:  site.Name(),
		Meta:   seo.BuildHomeMeta(site),
		Schema: seo.BuildWebSiteSchema(site),
		Data:   data,
	})
}

func statusOptions(selected service.Status) []StatusOption {
	opts := []StatusOption{
		{Value: service.StatusUpcoming, Label: "Будущие"},
		{Value: service.StatusPast, Label: "Прошедшие"},
		{Value: service.StatusAll, Label: "Все"},
	}
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}
	return opts
}

// eventBySlug looks up the event of the {slug} parameter and renders the
// not-found view when there is none.
func (h *FrontendHandler) eventBySlug(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	ev, ok := h.catalog.BySlug(slugParam(r))
	if !ok {
		renderNotFound(w, r, h.renderer, msgEventNotFound)
	}
	return ev, ok
}

// Event handles GET /events/{slug}.
func (h *FrontendHandler) Event(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	ev, ok := h.eventBySlug(w, r)
	if !ok {
		return
	}

	site := h.renderer.Site()
	meta := seo.BuildEventMeta(ev, site)
	renderPage(w, r, h.renderer, http.StatusOK, tmplEvent, render.TemplateData{
		Title:  meta.Title,
		Meta:   meta,
		Schema: seo.BuildEventSchema(ev, site),
		Data:   ev,
	})
}

// ShortLink handles GET /e/{slug}, the link format of the first site
// version.
func (h *FrontendHandler) ShortLink(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pathEvents+url.PathEscape(slugParam(r)), http.StatusMovedPermanently)
}

// Calendar handles GET /events/{slug}/calendar.ics.
func (h *FrontendHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	ev, ok := h.eventBySlug(w, r)
	if !ok {
		return
	}

	body := h.encoder.Build(ev)
	w.Header().Set(HeaderContentType, ics.ContentType)
	setAttachment(w, strings.TrimSuffix(ics.Filename(ev), ".ics"), ".ics", "event")
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Debug("writing calendar failed", "slug", ev.Slug, "error", err)
	}
}

// EventsJSON handles GET /data/events.json with the document as loaded.
func (h *FrontendHandler) EventsJSON(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		w.Header().Set("Retry-After", loadingRetryAfter)
		writeJSONError(w, http.StatusServiceUnavailable, "catalog is loading")
		return
	}

	raw := h.catalog.Raw()
	if len(raw) == 0 {
		raw = []byte("[]")
	}
	w.Header().Set(HeaderContentType, "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(raw)
}

// Robots handles GET /robots.txt.
func (h *FrontendHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.BuildRobots(h.robots)))
}

// Sitemap handles GET /sitemap.xml.
func (h *FrontendHandler) Sitemap(w http.ResponseWriter, _ *http.Request) {
	body, err := seo.BuildSitemap(h.renderer.Site(), h.catalog.Events())
	if err != nil {
		logAndInternalError(w, "failed to build sitemap", "error", err)
		return
	}
	w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// NotFound renders the not-found view for unknown routes.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer, msgPageNotFound)
}
