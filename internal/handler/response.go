// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/takigulyaki/afisha/internal/render"
	"github.com/takigulyaki/afisha/internal/util"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage renders a template and turns a rendering failure into a 500.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// renderNotFound renders the not-found view with the given message.
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, message string) {
	renderPage(w, r, renderer, http.StatusNotFound, tmplNotFound, render.TemplateData{
		Title: message,
		Data:  message,
	})
}

// slugParam returns the {slug} route parameter, percent-decoded.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// setAttachment marks the response as a download of name+ext. The plain
// filename parameter is ASCII-only; filename* carries the UTF-8 name.
func setAttachment(w http.ResponseWriter, name, ext, fallback string) {
	ascii := util.ASCIIFilename(name, fallback) + ext
	value := `attachment; filename="` + ascii + `"`
	if full := name + ext; full != ascii && name != "" {
		value += "; filename*=UTF-8''" + url.PathEscape(full)
	}
	w.Header().Set("Content-Disposition", value)
}

// localRedirectTarget returns target when it is a path on this site and
// def otherwise.
func localRedirectTarget(target, def string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
		return def
	}
	return target
}
