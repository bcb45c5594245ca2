package view

import "html/template"

// StatCard is one headline figure of a statistics page.
type StatCard struct {
	Label string
	Value string
	Hint  string
}

// StatRow is one label/value line inside a stats section.
type StatRow struct {
	Label string
	Value string
}

// StatSection groups related stat rows under a heading.
type StatSection struct {
	Title string
	Rows  []StatRow
}

// StatsView is the page model of the per-domain statistics screens.
type StatsView struct {
	Heading  string
	Cards    []StatCard
	Sections []StatSection
	Charts   []template.HTML
	Err      string
}
