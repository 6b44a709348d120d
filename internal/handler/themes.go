// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/takigulyaki/afisha/internal/render"
)

// ThemeHandler switches the colour theme kept in the session.
type ThemeHandler struct {
	sessionManager *scs.SessionManager
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(sm *scs.SessionManager) *ThemeHandler {
	return &ThemeHandler{sessionManager: sm}
}

// Toggle handles POST /theme. It flips light/dark and sends the browser
// back to the page named in the "return" field.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, msgInvalidForm, http.StatusBadRequest)
		return
	}

	theme := render.ToggleTheme(h.sessionManager, r)
	slog.Debug("theme switched", "theme", theme)

	http.Redirect(w, r, localRedirectTarget(r.PostFormValue("return"), RouteRoot), http.StatusSeeOther)
}
