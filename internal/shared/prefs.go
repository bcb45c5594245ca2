package shared

import (
	"encoding/json"
	"strings"
)

// Session keys for persisted UI preferences. The names are part of the
// stored contract: a preference written under one of these keys must be
// restored identically after a reload.
const (
	PrefSidebarOpen     = "sidebarOpen"
	PrefTheme           = "theme"
	prefSidebarSections = "sidebarSections"
)

// Theme values persisted under PrefTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// UIPrefs mirrors the layout preferences of one admin session.
type UIPrefs struct {
	SidebarOpen      bool
	ThemeIsDark      bool
	ExpandedSections map[string]bool
}

// LoadUIPrefs restores layout preferences from the session. The sidebar
// defaults to open and the theme to light when nothing is stored yet.
func LoadUIPrefs(sess *Session) UIPrefs {
	prefs := UIPrefs{SidebarOpen: true, ExpandedSections: map[string]bool{}}
	if sess == nil {
		return prefs
	}
	if raw := sess.Get(PrefSidebarOpen); raw != "" {
		var open bool
		if err := json.Unmarshal([]byte(raw), &open); err == nil {
			prefs.SidebarOpen = open
		}
	}
	prefs.ThemeIsDark = sess.Get(PrefTheme) == ThemeDark
	for _, slug := range strings.Split(sess.Get(prefSidebarSections), ",") {
		if slug != "" {
			prefs.ExpandedSections[slug] = true
		}
	}
	return prefs
}

// SaveSidebarOpen persists the sidebar toggle as a JSON boolean.
func SaveSidebarOpen(sess *Session, open bool) {
	if sess == nil {
		return
	}
	data, _ := json.Marshal(open)
	sess.Set(PrefSidebarOpen, string(data))
}

// SaveTheme persists the theme choice as "dark" or "light".
func SaveTheme(sess *Session, dark bool) {
	if sess == nil {
		return
	}
	if dark {
		sess.Set(PrefTheme, ThemeDark)
		return
	}
	sess.Set(PrefTheme, ThemeLight)
}

// ToggleSection flips one sidebar section and persists the expanded set.
func ToggleSection(sess *Session, slug string) {
	if sess == nil || slug == "" {
		return
	}
	prefs := LoadUIPrefs(sess)
	if prefs.ExpandedSections[slug] {
		delete(prefs.ExpandedSections, slug)
	} else {
		prefs.ExpandedSections[slug] = true
	}
	slugs := make([]string, 0, len(prefs.ExpandedSections))
	for s := range prefs.ExpandedSections {
		slugs = append(slugs, s)
	}
	sess.Set(prefSidebarSections, strings.Join(slugs, ","))
}
