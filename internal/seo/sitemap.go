// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"

	"github.com/takigulyaki/afisha/internal/model"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the afisha.
const (
	ChangeFreqDaily  ChangeFreq = "daily"
	ChangeFreqWeekly ChangeFreq = "weekly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// BuildSitemap lists the home page and every event with a slug. An event
// slug appears once even when several events share it.
func BuildSitemap(site *SiteConfig, events []model.Event) ([]byte, error) {
	urls := []SitemapURL{{
		Loc:        site.Origin() + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	}}

	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Slug == "" {
			continue
		}
		if _, dup := seen[ev.Slug]; dup {
			continue
		}
		seen[ev.Slug] = struct{}{}

		urls = append(urls, SitemapURL{
			Loc:        site.EventURL(ev.Slug),
			LastMod:    ev.Date,
			ChangeFreq: ChangeFreqWeekly,
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(Sitemap{XMLNS: XMLNamespace, URLs: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
