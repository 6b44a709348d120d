// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers, chiefly URL slug
// generation and validation for event titles written in Russian.
package util

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinFold strips combining marks, turning "é" into "e".
var latinFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a title to a URL slug.
//
// The result is lower-case and contains only ASCII letters, digits,
// Cyrillic letters а-я and ё, and single hyphens, with no hyphen at
// either end. Whitespace runs become one hyphen, accented Latin letters
// lose their accents, everything else is dropped. Slugify is idempotent.
func Slugify(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), "-")

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppresses a leading hyphen
	for _, r := range s {
		if !isSlugRune(r) {
			r = foldLatin(r)
			if r == 0 {
				continue
			}
		}
		if r == '-' {
			if lastHyphen {
				continue
			}
			lastHyphen = true
		} else {
			lastHyphen = false
		}
		b.WriteRune(r)
	}

	return strings.TrimRight(b.String(), "-")
}

// isSlugRune reports whether r may appear in a slug.
func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		return true
	case r >= 'а' && r <= 'я', r == 'ё':
		return true
	}
	return false
}

// foldLatin maps an accented Latin letter to its ASCII base letter, or
// returns 0 when r has no such form.
func foldLatin(r rune) rune {
	if !unicode.Is(unicode.Latin, r) {
		return 0
	}
	folded, _, err := transform.String(latinFold, string(r))
	if err != nil || folded == "" {
		return 0
	}
	base := []rune(folded)[0]
	if base >= 'a' && base <= 'z' {
		return base
	}
	return 0
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isSlugRune(r) {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}

// ASCIIFilename transliterates a slug to plain ASCII for the legacy
// filename parameter of Content-Disposition. It falls back to def when
// nothing printable is left.
func ASCIIFilename(slug, def string) string {
	out := Slugify(unidecode.Unidecode(slug))
	if out == "" {
		return def
	}
	return out
}
