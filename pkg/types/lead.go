// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the lead-engine pipeline:
// leads, research queries, evaluation samples, and per-stage configuration.
package types

import "strings"

// Lead is a candidate contact record. Name is the primary identity key and
// Email the secondary one; every other field is optional and must come from
// explicit source evidence (a contract enforced by the producing agent, not
// checked structurally).
type Lead struct {
	// Name is the person's name with titles and degrees stripped
	// (no "Dr.", "PhD", etc.).
	Name string `json:"name" yaml:"name"`

	// Email is a professional email address, when explicitly sourced.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Phone is a direct office or professional number.
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`

	// Website is an official profile or institutional page URL.
	Website string `json:"website,omitempty" yaml:"website,omitempty"`

	// Title is the professional title (e.g. "Professor", "Associate Professor").
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Headline is a one-line description (e.g. "Professor at University X,
	// Department Y").
	Headline string `json:"headline,omitempty" yaml:"headline,omitempty"`

	// Institution is the person's affiliation.
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`

	// BackgroundSummary is a short summary of the person's background,
	// research interests, and publications.
	BackgroundSummary string `json:"background_summary,omitempty" yaml:"background_summary,omitempty"`

	// SourceURL is the URL where the information was found.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

// String renders the lead as labelled lines, omitting empty fields.
func (l Lead) String() string {
	fields := []struct {
		label string
		value string
	}{
		{"Name", l.Name},
		{"Title", l.Title},
		{"Headline", l.Headline},
		{"Email", l.Email},
		{"Phone", l.Phone},
		{"Website", l.Website},
		{"Institution", l.Institution},
		{"Background", l.BackgroundSummary},
		{"Source", l.SourceURL},
	}

	var lines []string
	for _, f := range fields {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}
	return strings.Join(lines, "\n")
}

// LeadResults is an ordered collection of leads. Insertion order is discovery
// order; no deduplication is guaranteed at this layer (that is the matcher's
// job during evaluation).
type LeadResults struct {
	Leads []Lead `json:"leads" yaml:"leads"`
}

// String renders every lead separated by blank lines, or "No leads found."
// when the collection is empty.
func (r LeadResults) String() string {
	if len(r.Leads) == 0 {
		return "No leads found."
	}
	parts := make([]string, len(r.Leads))
	for i, l := range r.Leads {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n\n")
}

// ResearcherResults is the structured output of a delegated researcher agent:
// the task it was assigned, the strategy it reports having used, and the
// leads it found.
type ResearcherResults struct {
	Task           string      `json:"task" yaml:"task"`
	SearchStrategy string      `json:"search_strategy" yaml:"search_strategy"`
	Leads          LeadResults `json:"leads" yaml:"leads"`
}

// ResearchParams is a structured lead-research query. WhoQuery and WhatQuery
// are required; the other two are optional qualifiers. Pure value object.
type ResearchParams struct {
	// WhoQuery names roles, titles, or professions
	// (e.g. "researchers", "directors", "professors").
	WhoQuery string `json:"who_query" yaml:"who_query"`

	// WhatQuery names the industry, field, or specialization
	// (e.g. "Human Nutrition", "Cancer Research", "AI").
	WhatQuery string `json:"what_query" yaml:"what_query"`

	// WhereQuery names a geographic location, institution, or organization
	// type (e.g. "Edmonton", "universities", "hospitals").
	WhereQuery string `json:"where_query,omitempty" yaml:"where_query,omitempty"`

	// ContextQuery holds additional qualifiers
	// (e.g. "published authors", "department heads").
	ContextQuery string `json:"context_query,omitempty" yaml:"context_query,omitempty"`
}
