// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"filippo.io/csrf"
)

// CSRFConfig configures cross-origin protection for the admin and theme
// forms. Requests are judged by their Sec-Fetch-Site and Origin headers,
// so the forms carry no token.
type CSRFConfig struct {
	// TrustedOrigins lists "scheme://host[:port]" origins allowed to post
	// from another site.
	TrustedOrigins []string

	// ErrorHandler answers rejected requests. Defaults to a plain 403.
	ErrorHandler http.Handler
}

// DefaultCSRFConfig trusts the public site origin and, in development,
// the local listen port.
func DefaultCSRFConfig(siteURL string, isDev bool, port int) CSRFConfig {
	var cfg CSRFConfig
	if u, err := url.Parse(siteURL); err == nil && u.Scheme != "" && u.Host != "" {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, u.Scheme+"://"+u.Host)
	}
	if isDev {
		p := strconv.Itoa(port)
		cfg.TrustedOrigins = append(cfg.TrustedOrigins,
			"http://localhost:"+p,
			"http://127.0.0.1:"+p,
		)
	}
	return cfg
}

// CSRF returns a middleware that rejects unsafe cross-origin browser
// requests. Safe methods always pass.
func CSRF(cfg CSRFConfig) (func(http.Handler) http.Handler, error) {
	protection := csrf.New()
	for _, origin := range cfg.TrustedOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("trusting origin %q: %w", origin, err)
		}
	}

	fail := cfg.ErrorHandler
	if fail == nil {
		fail = http.HandlerFunc(csrfErrorHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := protection.Check(r); err != nil {
				slog.Warn("cross-origin form rejected",
					"reason", err.Error(),
					"method", r.Method,
					"path", r.URL.Path,
					"origin", r.Header.Get("Origin"),
					"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
				)
				fail.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func csrfErrorHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Запрос отклонён: форма отправлена с другого сайта", http.StatusForbidden)
}
