// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production mode enables HSTS", false, "max-age=31536000; includeSubDomains"},
		{"development mode disables HSTS", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))(okHandler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security"))
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Security-Policy"), "default-src 'self'; script-src 'self'"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
			assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")
		})
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/data/"}
	handler := SecurityHeaders(cfg)(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/events.json", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/x", nil))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"zeta-src":    "'none'",
		"img-src":     "'self'",
		"default-src": "'self'",
		"alpha-src":   "'self'",
	})
	assert.Equal(t, "default-src 'self'; img-src 'self'; alpha-src 'self'; zeta-src 'none'", got)
}

func TestBuildPermissionsPolicy(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"})
	assert.Equal(t, "camera=(), usb=()", got)
}

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		method   string
		target   string
		wantCode int
		wantLoc  string
	}{
		{http.MethodGet, "/", http.StatusOK, ""},
		{http.MethodGet, "/admin/", http.StatusMovedPermanently, "/admin"},
		{http.MethodGet, "/events/x/?a=1", http.StatusMovedPermanently, "/events/x?a=1"},
		{http.MethodGet, "//evil.example/", http.StatusMovedPermanently, "/"},
		{http.MethodHead, "/admin/", http.StatusMovedPermanently, "/admin"},
		{http.MethodPost, "/admin/events/", http.StatusOK, ""},
		{http.MethodGet, "/admin", http.StatusOK, ""},
	}

	handler := StripTrailingSlash(okHandler)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}
