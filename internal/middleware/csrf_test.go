// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig("https://afisha.example/", true, 3000)
	assert.Equal(t, []string{
		"https://afisha.example",
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}, dev.TrustedOrigins)

	prod := DefaultCSRFConfig("https://afisha.example", false, 3000)
	assert.Equal(t, []string{"https://afisha.example"}, prod.TrustedOrigins)

	assert.Empty(t, DefaultCSRFConfig("", false, 3000).TrustedOrigins)
}

func newCSRF(t *testing.T, cfg CSRFConfig) http.Handler {
	t.Helper()
	mw, err := CSRF(cfg)
	require.NoError(t, err)
	return mw(okHandler)
}

func TestCSRF_FetchMetadata(t *testing.T) {
	handler := newCSRF(t, DefaultCSRFConfig("https://afisha.example", false, 8080))

	tests := []struct {
		name     string
		method   string
		fetch    string
		origin   string
		wantCode int
	}{
		{"safe method cross-site", http.MethodGet, "cross-site", "", http.StatusOK},
		{"same-origin post", http.MethodPost, "same-origin", "", http.StatusOK},
		{"non-browser post", http.MethodPost, "", "", http.StatusOK},
		{"cross-site post", http.MethodPost, "cross-site", "https://evil.example", http.StatusForbidden},
		{"trusted site origin", http.MethodPost, "cross-site", "https://afisha.example", http.StatusOK},
		{"old browser foreign origin", http.MethodPost, "", "https://evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/theme", nil)
			if tt.fetch != "" {
				req.Header.Set("Sec-Fetch-Site", tt.fetch)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestCSRF_WithCustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig("", false, 8080)
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := newCSRF(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/admin/events", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCSRF_InvalidOrigin(t *testing.T) {
	_, err := CSRF(CSRFConfig{TrustedOrigins: []string{"afisha.example/path"}})
	assert.Error(t, err)
}
