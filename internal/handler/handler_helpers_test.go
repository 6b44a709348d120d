// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/takigulyaki/afisha/internal/catalog"
	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/ics"
	"github.com/takigulyaki/afisha/internal/logging"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/render"
	"github.com/takigulyaki/afisha/internal/seo"
	"github.com/takigulyaki/afisha/internal/service"
	"github.com/takigulyaki/afisha/internal/session"
	"github.com/takigulyaki/afisha/internal/store"
	"github.com/takigulyaki/afisha/internal/version"
	"github.com/takigulyaki/afisha/web"
)

// testEventsDocument holds one event before testNow and two after it.
const testEventsDocument = `[
  {"id": "a", "title": "Прогулка по Яффо", "description": "Встреча у часовой башни", "date": "2024-03-20", "startTime": "18:00", "endTime": "19:30", "location": "Яффо", "category": "Прогулки", "slug": "progulka-po-yaffo"},
  {"id": "b", "title": "Мастер-класс по керамике", "date": "2024-03-10", "startTime": "11:00", "category": "Мастер-классы", "slug": "keramika"},
  {"id": "c", "title": "Лекция о городе", "date": "2024-04-01", "startTime": "19:00", "location": "Тель-Авив", "category": "Лекции", "slug": "lekciya"}
]`

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	router   http.Handler
	sm       *scs.SessionManager
	catalog  *catalog.Catalog
	events   *store.EventStore
	journal  *logging.Journal
	frontend *FrontendHandler
	admin    *AdminHandler
	cookies  []*http.Cookie
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds the full router over a catalog read from document.
// An empty document leaves the catalog unloaded.
func newTestServer(t *testing.T, document string) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	path := filepath.Join(t.TempDir(), "events.json")
	if document != "" {
		require.NoError(t, os.WriteFile(path, []byte(document), 0o600))
	}
	cat := catalog.New(catalog.NewLoader(path, time.Second, logger), logger)

	events, err := store.Open(ctx, store.NewMemoryBlobStore(), nil, &model.SequenceGenerator{Prefix: "ev"}, logger)
	require.NoError(t, err)
	cat.OnLoad(func(snap catalog.Snapshot) { events.Seed(snap.Events) })
	if document != "" {
		require.NoError(t, cat.Refresh(ctx))
	}

	formatter, err := datetime.NewFormatter("Asia/Jerusalem")
	require.NoError(t, err)
	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	sm := session.NewMemory(true)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		Formatter:      formatter,
		Site: &seo.SiteConfig{
			SiteName:        "Таки Гуляки",
			SiteURL:         "https://afisha.example",
			SiteDescription: "Афиша прогулок",
		},
	})
	require.NoError(t, err)

	journal := logging.NewJournal(10)
	encoder := ics.NewEncoder(&model.SequenceGenerator{Prefix: "uid"})

	frontend := NewFrontendHandler(renderer, cat, service.NewQueryService(formatter.Location()), encoder, logger)
	frontend.SetClock(func() time.Time { return testNow })
	admin := NewAdminHandler(renderer, events, journal, logger)
	admin.SetClock(func() time.Time { return testNow })
	theme := NewThemeHandler(sm)
	health := NewHealthHandler(cat, events, journal, version.Info{Version: "v1.2.3"})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get(RouteRoot, frontend.Home)
	r.Get(RouteEvent, frontend.Event)
	r.Get(RouteEventCalendar, frontend.Calendar)
	r.Get(RouteShortLink, frontend.ShortLink)
	r.Get(RouteEventsJSON, frontend.EventsJSON)
	r.Get(RouteRobots, frontend.Robots)
	r.Get(RouteSitemap, frontend.Sitemap)
	r.Post(RouteTheme, theme.Toggle)
	r.Get(RouteHealth, health.Health)
	r.Get(RouteHealthLive, health.Liveness)
	r.Route(RouteAdmin, func(r chi.Router) {
		r.Use(frontend.RequireCatalog)
		r.Get("/", admin.List)
		r.Get(RouteAdminEvents+RouteSuffixNew, admin.NewForm)
		r.Post(RouteAdminEvents, admin.Create)
		r.Get(RouteAdminEventsID+RouteSuffixEdit, admin.EditForm)
		r.Post(RouteAdminEventsID, admin.Update)
		r.Get(RouteAdminEventsID+RouteSuffixDelete, admin.ConfirmDelete)
		r.Post(RouteAdminEventsID+RouteSuffixDelete, admin.Delete)
		r.Get(RouteExport, admin.Export)
		r.Post(RouteImport, admin.Import)
		r.Post(RouteRestore, admin.Restore)
	})
	r.NotFound(frontend.NotFound)

	return &testServer{
		router:   r,
		sm:       sm,
		catalog:  cat,
		events:   events,
		journal:  journal,
		frontend: frontend,
		admin:    admin,
	}
}

// do serves req, carrying the session cookie between calls.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return s.do(req)
}
