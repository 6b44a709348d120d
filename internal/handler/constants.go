// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteEvent is the event detail page.
	RouteEvent = "/events/{slug}"
	// RouteEventCalendar is the per-event .ics download.
	RouteEventCalendar = RouteEvent + "/calendar.ics"
	// RouteShortLink is the short event link kept from the first site version.
	RouteShortLink = "/e/{slug}"
	// RouteEventsJSON serves the catalog document.
	RouteEventsJSON = "/data/events.json"
	// RouteRobots is robots.txt.
	RouteRobots = "/robots.txt"
	// RouteSitemap is sitemap.xml.
	RouteSitemap = "/sitemap.xml"
	// RouteTheme toggles the colour theme.
	RouteTheme = "/theme"
	// RouteHealth is the health check.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe.
	RouteHealthLive = "/health/live"

	// RouteAdmin is the admin editor root.
	RouteAdmin = "/admin"
	// RouteAdminEvents is the admin events collection.
	RouteAdminEvents = "/events"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixEdit is the suffix for edit forms.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for delete confirmation.
	RouteSuffixDelete = "/delete"
	// RouteExport is the export admin route.
	RouteExport = "/export"
	// RouteImport is the import admin route.
	RouteImport = "/import"
	// RouteRestore is the events.json upload admin route.
	RouteRestore = "/restore"

	// RouteAdminEventsID is the admin event ID route pattern.
	RouteAdminEventsID = RouteAdminEvents + RouteParamID
)

const (
	redirectAdmin       = RouteAdmin
	redirectAdminEvents = RouteAdmin + RouteAdminEvents
	pathEvents          = "/events/"
)

// Template names.
const (
	tmplHome        = "home"
	tmplEvent       = "event"
	tmplNotFound    = "notfound"
	tmplLoading     = "loading"
	tmplAdminList   = "admin/list"
	tmplAdminForm   = "admin/form"
	tmplAdminDelete = "admin/confirm"
)

// User-facing messages.
const (
	msgPageNotFound  = "Страница не найдена."
	msgEventNotFound = "Событие не найдено."
	msgSlugTaken     = "Такой слаг уже используется другим событием"
	msgInvalidForm   = "Не удалось прочитать форму"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
