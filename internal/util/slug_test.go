// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"
	"unicode/utf8"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "with special characters",
			input:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "with numbers",
			input:    "Page 123",
			expected: "page-123",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "with multiple spaces",
			input:    "Hello   World",
			expected: "hello-world",
		},
		{
			name:     "with hyphens",
			input:    "Hello - World",
			expected: "hello-world",
		},
		{
			name:     "with leading/trailing spaces",
			input:    "  Hello World  ",
			expected: "hello-world",
		},
		{
			name:     "all special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "cjk characters are dropped",
			input:    "日本語タイトル",
			expected: "",
		},
		{
			name:     "cyrillic is preserved",
			input:    "Открытая встреча сообщества",
			expected: "открытая-встреча-сообщества",
		},
		{
			name:     "cyrillic with punctuation",
			input:    "Таки Гуляки: Встреча №5!",
			expected: "таки-гуляки-встреча-5",
		},
		{
			name:     "yo and short i survive",
			input:    "Ёлка и Йога",
			expected: "ёлка-и-йога",
		},
		{
			name:     "decomposed short i is composed first",
			input:    "Мои\u0306",
			expected: "мой",
		},
		{
			name:     "tabs and newlines",
			input:    "Мастер\t-\nкласс",
			expected: "мастер-класс",
		},
		{
			name:     "leading hyphen punctuation",
			input:    "--- Прогулка ---",
			expected: "прогулка",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed case",
			input:    "HeLLo WoRLd",
			expected: "hello-world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"Таки Гуляки: Встреча №5!",
		"Мастер-класс по акварели",
		"  --Café -- Ёлка  ",
		"Über München 2024",
		"",
	}

	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
		if once != "" && !IsValidSlug(once) {
			t.Errorf("Slugify(%q) = %q is not a valid slug", in, once)
		}
	}
}

func TestSlugifyAlphabet(t *testing.T) {
	got := Slugify("Таки Гуляки: Встреча №5!")
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8: %q", got)
	}
	for _, r := range got {
		if !isSlugRune(r) {
			t.Errorf("unexpected rune %q in %q", r, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid simple", "hello", true},
		{"valid with hyphen", "hello-world", true},
		{"valid cyrillic", "встреча-5", true},
		{"empty", "", false},
		{"uppercase", "Hello", false},
		{"uppercase cyrillic", "Встреча", false},
		{"leading hyphen", "-hello", false},
		{"trailing hyphen", "hello-", false},
		{"double hyphen", "hello--world", false},
		{"space", "hello world", false},
		{"path traversal", "../etc", false},
		{"special chars", "hello!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSlug(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestASCIIFilename(t *testing.T) {
	if got := ASCIIFilename("hello-world", "event"); got != "hello-world" {
		t.Errorf("ASCIIFilename ascii = %q", got)
	}
	got := ASCIIFilename("встреча", "event")
	if got == "" || got == "event" {
		t.Errorf("ASCIIFilename cyrillic = %q, want transliteration", got)
	}
	for _, r := range got {
		if r > 127 {
			t.Errorf("ASCIIFilename(%q) kept non-ASCII rune %q", "встреча", r)
		}
	}
	if got := ASCIIFilename("", "event"); got != "event" {
		t.Errorf("ASCIIFilename empty = %q, want fallback", got)
	}
}
