// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takigulyaki/afisha/internal/model"
)

func TestBuildSitemap(t *testing.T) {
	data, err := BuildSitemap(testSite, []model.Event{
		{Title: "A", Date: "2024-03-15", Slug: "a"},
		{Title: "No slug", Date: "2024-03-16"},
		{Title: "A again", Date: "2024-03-17", Slug: "a"},
		{Title: "B", Date: "2024-03-18", Slug: "b"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))

	var sm Sitemap
	require.NoError(t, xml.Unmarshal(data, &sm))
	require.Len(t, sm.URLs, 3)
	assert.Equal(t, "https://afisha.example/", sm.URLs[0].Loc)
	assert.Equal(t, "https://afisha.example/events/a", sm.URLs[1].Loc)
	assert.Equal(t, "2024-03-15", sm.URLs[1].LastMod)
	assert.Equal(t, "https://afisha.example/events/b", sm.URLs[2].Loc)
}

func TestBuildRobots(t *testing.T) {
	got := BuildRobots(RobotsConfig{SiteURL: "https://afisha.example/"})
	assert.Contains(t, got, "User-agent: *\n")
	assert.Contains(t, got, "Disallow: /admin\n")
	assert.Contains(t, got, "Allow: /\n")
	assert.Contains(t, got, "Sitemap: https://afisha.example/sitemap.xml\n")

	staging := BuildRobots(RobotsConfig{SiteURL: "https://afisha.example", DisallowAll: true})
	assert.Equal(t, "User-agent: *\nDisallow: /\n", staging)

	extra := BuildRobots(RobotsConfig{DisallowPaths: []string{"/data"}})
	assert.Contains(t, extra, "Disallow: /data\n")
	assert.NotContains(t, extra, "Sitemap:")
}
