// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/takigulyaki/afisha/internal/catalog"
	"github.com/takigulyaki/afisha/internal/config"
	"github.com/takigulyaki/afisha/internal/datetime"
	"github.com/takigulyaki/afisha/internal/handler"
	"github.com/takigulyaki/afisha/internal/ics"
	"github.com/takigulyaki/afisha/internal/logging"
	"github.com/takigulyaki/afisha/internal/middleware"
	"github.com/takigulyaki/afisha/internal/model"
	"github.com/takigulyaki/afisha/internal/render"
	"github.com/takigulyaki/afisha/internal/scheduler"
	"github.com/takigulyaki/afisha/internal/seo"
	"github.com/takigulyaki/afisha/internal/service"
	"github.com/takigulyaki/afisha/internal/session"
	"github.com/takigulyaki/afisha/internal/store"
	"github.com/takigulyaki/afisha/internal/version"
	"github.com/takigulyaki/afisha/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// catalogRefreshJob names the scheduled catalog reload.
const catalogRefreshJob = "catalog-refresh"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "afisha - events listing for Таки Гуляки\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TG_EVENTS_SOURCE     events.json path or URL (default: ./data/events.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TG_REFRESH_CRON      Catalog reload schedule, e.g. \"*/15 * * * *\" (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TG_STORE_BACKEND     sqlite|redis|postgres|memory (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TG_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TG_ENV               development|production (default: development)\n")
	}

	flag.Parse()

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// WARN and ERROR records are also kept for the admin page
	journal := logging.NewJournal(logging.DefaultJournalSize)
	logger := slog.New(logging.NewJournalHandler(
		logging.NewHandler(os.Stdout, cfg.IsDevelopment(), logging.ParseLevel(cfg.LogLevel)),
		journal,
	))
	slog.SetDefault(logger)
	slog.Info("starting afisha", "version", info.String(), "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.StoreBackend == store.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	blobs, err := store.NewBlobStore(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return fmt.Errorf("opening event store: %w", err)
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			slog.Error("error closing event store", "error", err)
		}
	}()

	events, err := store.Open(ctx, blobs, nil, model.UUIDGenerator{}, logger)
	if err != nil {
		return fmt.Errorf("loading admin events: %w", err)
	}

	sessionManager := newSessionManager(blobs, cfg.IsDevelopment())

	formatter, err := datetime.NewFormatter(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading display timezone: %w", err)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Formatter:      formatter,
		Site: &seo.SiteConfig{
			SiteName:        cfg.SiteName,
			SiteURL:         cfg.SiteURL,
			SiteDescription: cfg.SiteDescription,
		},
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Public catalog; the admin list starts from it until something is saved
	cat := catalog.New(catalog.NewLoader(cfg.EventsSource, cfg.FetchTimeout, logger), logger)
	cat.OnLoad(func(snap catalog.Snapshot) {
		if events.Seed(snap.Events) {
			slog.Info("admin events seeded from catalog", "events", len(snap.Events))
		}
	})
	cat.LoadInBackground(ctx)

	sched := scheduler.New(logger)
	if cfg.RefreshEnabled() {
		if err := sched.Add(catalogRefreshJob, cfg.RefreshCron, cat.Refresh); err != nil {
			return fmt.Errorf("scheduling catalog refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	frontendHandler := handler.NewFrontendHandler(
		renderer, cat, service.NewQueryService(formatter.Location()), ics.NewEncoder(model.UUIDGenerator{}), logger)
	if cfg.RobotsDisallowAll {
		frontendHandler.SetRobots(seo.RobotsConfig{DisallowAll: true})
	}
	adminHandler := handler.NewAdminHandler(renderer, events, journal, logger)
	themeHandler := handler.NewThemeHandler(sessionManager)
	healthHandler := handler.NewHealthHandler(cat, events, journal, info)
	healthHandler.SetJobs(sched.Jobs)

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// Health checks stay outside the session
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealthLive, healthHandler.Liveness)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticServer := http.FileServerFS(staticFS)
	r.Handle("/static/*", http.StripPrefix("/static", staticServer))
	r.Get("/favicon.svg", staticServer.ServeHTTP)

	r.Get(handler.RouteRobots, frontendHandler.Robots)
	r.Get(handler.RouteSitemap, frontendHandler.Sitemap)
	r.Get(handler.RouteEventsJSON, frontendHandler.EventsJSON)
	r.Get(handler.RouteShortLink, frontendHandler.ShortLink)
	r.Get(handler.RouteEventCalendar, frontendHandler.Calendar)

	csrfMiddleware, err := middleware.CSRF(middleware.DefaultCSRFConfig(
		cfg.SiteURL, cfg.IsDevelopment(), cfg.ServerPort))
	if err != nil {
		return fmt.Errorf("configuring CSRF protection: %w", err)
	}
	adminLimiter := middleware.NewRateLimiter(cfg.AdminRateLimit, cfg.AdminRateBurst)

	// Pages that read or write the session
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteEvent, frontendHandler.Event)
		r.With(csrfMiddleware).Post(handler.RouteTheme, themeHandler.Toggle)

		r.Route(handler.RouteAdmin, func(r chi.Router) {
			r.Use(csrfMiddleware)
			r.Use(adminLimiter.Middleware())
			// Edits before the first load would hide the catalog from the admin list
			r.Use(frontendHandler.RequireCatalog)

			r.Get("/", adminHandler.List)
			r.Get(handler.RouteAdminEvents+handler.RouteSuffixNew, adminHandler.NewForm)
			r.Post(handler.RouteAdminEvents, adminHandler.Create)
			r.Get(handler.RouteAdminEventsID+handler.RouteSuffixEdit, adminHandler.EditForm)
			r.Post(handler.RouteAdminEventsID, adminHandler.Update)
			r.Get(handler.RouteAdminEventsID+handler.RouteSuffixDelete, adminHandler.ConfirmDelete)
			r.Post(handler.RouteAdminEventsID+handler.RouteSuffixDelete, adminHandler.Delete)
			r.Get(handler.RouteExport, adminHandler.Export)
			r.Post(handler.RouteImport, adminHandler.Import)
			r.Post(handler.RouteRestore, adminHandler.Restore)
		})

		r.NotFound(frontendHandler.NotFound)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "store", events.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newSessionManager keeps sessions next to the events when they live in
// SQLite and in memory otherwise.
func newSessionManager(blobs store.BlobStore, isDev bool) *scs.SessionManager {
	if sqlite, ok := blobs.(*store.SQLiteBlobStore); ok {
		slog.Info("session manager initialized", "store", "sqlite")
		return session.New(sqlite.DB(), isDev)
	}
	slog.Info("session manager initialized", "store", "memory")
	return session.NewMemory(isDev)
}
