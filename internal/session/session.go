// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the visitor session that carries the colour
// theme and flash messages.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Lifetime is how long a visitor's preferences are kept.
const Lifetime = 365 * 24 * time.Hour

// New creates a new session manager configured with SQLite store.
// The database must contain the sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := newManager(isDev)
	sm.Store = sqlite3store.New(db)
	return sm
}

// NewMemory creates a session manager that keeps sessions in memory, used
// when the event store is not backed by SQLite.
func NewMemory(isDev bool) *scs.SessionManager {
	sm := newManager(isDev)
	sm.Store = memstore.New()
	return sm
}

func newManager(isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Lifetime = Lifetime
	sm.Cookie.Name = "tg_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	if !isDev {
		// __Host- prefix requires Secure, Path=/ and no Domain
		sm.Cookie.Name = "__Host-tg_session"
	}

	return sm
}
