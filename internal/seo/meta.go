// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds meta tags, JSON-LD structured data, robots.txt and
// the sitemap for the public pages.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/takigulyaki/afisha/internal/model"
)

// Site defaults.
const (
	DefaultSiteURL   = "https://taki-gulyaki.netlify.app"
	DefaultSiteName  = "Таки Гуляки"
	DefaultImagePath = "/favicon.svg"

	// TitleSeparator joins the event title and the site name.
	TitleSeparator = " — "

	maxDescriptionRunes = 160
)

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // Page title (for <title> tag)
	Description   string // Meta description
	Canonical     string // Canonical URL
	OGTitle       string // Open Graph title
	OGDescription string // Open Graph description
	OGImage       string // Open Graph image URL (absolute)
	OGType        string // Open Graph type (website, event)
	OGSiteName    string
	OGURL         string
	Robots        string
	TwitterCard   string
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
}

// Origin returns the site URL without a trailing slash.
func (s *SiteConfig) Origin() string {
	origin := strings.TrimSuffix(s.SiteURL, "/")
	if origin == "" {
		return DefaultSiteURL
	}
	return origin
}

// Name returns the site name, or the default one.
func (s *SiteConfig) Name() string {
	if s.SiteName == "" {
		return DefaultSiteName
	}
	return s.SiteName
}

// EventURL is the canonical URL of an event detail page.
func (s *SiteConfig) EventURL(slug string) string {
	return s.Origin() + "/events/" + slug
}

// BuildHomeMeta creates the meta tags of the home page.
func BuildHomeMeta(site *SiteConfig) *Meta {
	return &Meta{
		Title:         site.Name(),
		Description:   site.SiteDescription,
		Canonical:     site.Origin() + "/",
		OGTitle:       site.Name(),
		OGDescription: site.SiteDescription,
		OGImage:       site.Origin() + DefaultImagePath,
		OGType:        "website",
		OGSiteName:    site.Name(),
		OGURL:         site.Origin() + "/",
		Robots:        "index,follow",
		TwitterCard:   "summary_large_image",
	}
}

// BuildPageMeta creates meta tags for a page that is not an event, such
// as the admin or an error page. These are never indexed.
func BuildPageMeta(title string, site *SiteConfig) *Meta {
	full := site.Name()
	if title != "" {
		full = title + TitleSeparator + site.Name()
	}
	return &Meta{
		Title:      full,
		OGTitle:    full,
		OGType:     "website",
		OGSiteName: site.Name(),
		Robots:     "noindex,nofollow",
	}
}

// BuildEventMeta creates the meta tags of an event detail page.
func BuildEventMeta(ev model.Event, site *SiteConfig) *Meta {
	title := ev.Title + TitleSeparator + site.Name()
	description := Description(ev.Description)
	url := site.EventURL(ev.Slug)
	image := ImageURL(ev.Image, site)

	return &Meta{
		Title:         title,
		Description:   description,
		Canonical:     url,
		OGTitle:       title,
		OGDescription: description,
		OGImage:       image,
		OGType:        "event",
		OGSiteName:    site.Name(),
		OGURL:         url,
		Robots:        "index,follow",
		TwitterCard:   "summary_large_image",
	}
}

// Description collapses every whitespace run to one space and keeps at
// most 160 characters.
func Description(s string) string {
	var b strings.Builder
	n := 0
	inSpace := false
	for _, r := range s {
		if n == maxDescriptionRunes {
			break
		}
		if isSpace(r) {
			if inSpace {
				continue
			}
			inSpace = true
			r = ' '
		} else {
			inSpace = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// ImageURL makes an event image absolute. Values starting with "http"
// are kept; everything else is resolved against the site origin, with
// the favicon as default.
func ImageURL(image string, site *SiteConfig) string {
	if strings.HasPrefix(image, "http") {
		return image
	}
	if image == "" {
		image = DefaultImagePath
	}
	return site.Origin() + image
}

// EventSchema represents JSON-LD Event structured data.
type EventSchema struct {
	Context             string     `json:"@context"`
	Type                string     `json:"@type"`
	Name                string     `json:"name"`
	Description         string     `json:"description,omitempty"`
	StartDate           string     `json:"startDate"`
	EndDate             string     `json:"endDate,omitempty"`
	EventAttendanceMode string     `json:"eventAttendanceMode"`
	Location            *Place     `json:"location,omitempty"`
	Image               string     `json:"image"`
	URL                 string     `json:"url"`
	Organizer           *OrgSchema `json:"organizer"`
}

// Place represents a JSON-LD Place.
type Place struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// WebSiteSchema represents JSON-LD WebSite structured data for homepage.
type WebSiteSchema struct {
	Context     string     `json:"@context"`
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Publisher   *OrgSchema `json:"publisher,omitempty"`
}

// OfflineAttendance is the attendance mode of every event on the afisha.
const OfflineAttendance = "https://schema.org/OfflineEventAttendanceMode"

// NewEventSchema builds the structured data of an event.
func NewEventSchema(ev model.Event, site *SiteConfig) EventSchema {
	schema := EventSchema{
		Context:             "https://schema.org",
		Type:                "Event",
		Name:                ev.Title,
		Description:         ev.Description,
		StartDate:           ev.Date + "T" + ev.Start() + ":00",
		EventAttendanceMode: OfflineAttendance,
		Image:               ImageURL(ev.Image, site),
		URL:                 site.EventURL(ev.Slug),
		Organizer: &OrgSchema{
			Type: "Organization",
			Name: site.Name(),
			URL:  site.Origin(),
		},
	}
	if ev.HasEnd() {
		schema.EndDate = ev.Date + "T" + ev.EndTime + ":00"
	}
	if ev.Location != "" {
		schema.Location = &Place{Type: "Place", Name: ev.Location}
	}
	return schema
}

// BuildEventSchema renders the event structured data for a script tag.
func BuildEventSchema(ev model.Event, site *SiteConfig) template.JS {
	return marshalJSONLD(NewEventSchema(ev, site))
}

// BuildWebSiteSchema renders the home page structured data.
func BuildWebSiteSchema(site *SiteConfig) template.JS {
	return marshalJSONLD(WebSiteSchema{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        site.Name(),
		URL:         site.Origin() + "/",
		Description: site.SiteDescription,
		Publisher: &OrgSchema{
			Type: "Organization",
			Name: site.Name(),
			URL:  site.Origin(),
		},
	})
}

// marshalJSONLD marshals structured data to JSON-LD script tag content.
// json.Marshal escapes <, > and & so the result cannot close the script
// element.
func marshalJSONLD(v any) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(data)
}
