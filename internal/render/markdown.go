// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// descriptionMarkdown keeps single line breaks, as descriptions are
// written as plain text with newlines.
var descriptionMarkdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// htmlSanitizer strips anything unsafe from rendered descriptions.
var htmlSanitizer = bluemonday.UGCPolicy()

// Markdown renders an event description to sanitised HTML.
func Markdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped above
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitised by bluemonday
}
