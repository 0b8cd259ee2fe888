// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strings"
	"testing"

	"github.com/pdiddy/lead-engine/pkg/types"
)

func TestBuild(t *testing.T) {
	params := types.ResearchParams{
		WhoQuery:     "professors",
		WhatQuery:    "Human Nutrition",
		WhereQuery:   "Canada",
		ContextQuery: "published authors",
	}

	got := Build(params, Options{})

	for _, want := range []string{
		"Who: professors",
		"What is the field of study: Human Nutrition",
		"Where are they located: Canada",
		"Additional context: published authors",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() missing %q:\n%s", want, got)
		}
	}
}

func TestBuildInstitutionWhereLine(t *testing.T) {
	params := types.ResearchParams{
		WhoQuery:   "researchers",
		WhatQuery:  "AI",
		WhereQuery: "United States",
	}

	got := Build(params, Options{Institution: "MIT"})
	if !strings.Contains(got, "Where are they located: MIT, United States") {
		t.Errorf("institution rendering wrong:\n%s", got)
	}

	plain := Build(params, Options{})
	if !strings.Contains(plain, "Where are they located: United States") || strings.Contains(plain, "MIT") {
		t.Errorf("non-institution rendering wrong:\n%s", plain)
	}
}

func TestBuildOptionalFieldsUnspecified(t *testing.T) {
	got := Build(types.ResearchParams{WhoQuery: "experts", WhatQuery: "Oncology"}, Options{})

	if !strings.Contains(got, "Where are they located: Not specified") {
		t.Errorf("empty where should render as Not specified:\n%s", got)
	}
	if !strings.Contains(got, "Additional context: Not specified") {
		t.Errorf("empty context should render as Not specified:\n%s", got)
	}
}
