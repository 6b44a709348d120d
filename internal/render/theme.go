// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// ThemeKey is the session key holding the colour theme.
const ThemeKey = "tg-theme"

// Colour themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NormalizeTheme maps anything but "dark" to the light theme.
func NormalizeTheme(theme string) string {
	if theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// CurrentTheme returns the theme stored in the session.
func CurrentTheme(sm *scs.SessionManager, r *http.Request) string {
	return NormalizeTheme(sm.GetString(r.Context(), ThemeKey))
}

// ToggleTheme flips the stored theme and returns the new value.
func ToggleTheme(sm *scs.SessionManager, r *http.Request) string {
	next := ThemeDark
	if CurrentTheme(sm, r) == ThemeDark {
		next = ThemeLight
	}
	sm.Put(r.Context(), ThemeKey, next)
	return next
}
