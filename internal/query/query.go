// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query renders structured research parameters into the
// natural-language query paragraph handed to the research agent.
package query

import (
	"fmt"
	"strings"

	"github.com/pdiddy/lead-engine/pkg/types"
)

// Options adjust how the query paragraph is rendered.
type Options struct {
	// Institution, when non-empty, scopes the "where" line to a single
	// institution: it is rendered as "<institution>, <where>" rather than
	// the bare where parameter.
	Institution string
}

// Build renders params into the query paragraph. Optional parameters that
// are empty render as "Not specified" so the agent never sees a dangling
// label.
func Build(params types.ResearchParams, opts Options) string {
	where := orUnspecified(params.WhereQuery)
	if opts.Institution != "" {
		where = fmt.Sprintf("%s, %s", opts.Institution, orUnspecified(params.WhereQuery))
	}

	var b strings.Builder
	b.WriteString("Find me as many leads as possible for the following query:\n\n")
	fmt.Fprintf(&b, "Who: %s\n", params.WhoQuery)
	fmt.Fprintf(&b, "What is the field of study: %s\n", params.WhatQuery)
	fmt.Fprintf(&b, "Where are they located: %s\n", where)
	fmt.Fprintf(&b, "Additional context: %s\n", orUnspecified(params.ContextQuery))
	return b.String()
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
