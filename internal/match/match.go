// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match pairs a produced lead list against an expected lead list
// using normalized-identity rules and reports the resulting partition.
package match

import (
	"strings"

	"github.com/pdiddy/lead-engine/pkg/types"
)

// Pair is one matched (actual, expected) lead couple.
type Pair struct {
	Actual   types.Lead
	Expected types.Lead
}

// Result is the partition produced by Compare. Every expected lead appears in
// exactly one of {Matches, Missing}; every actual lead in exactly one of
// {Matches, Extra}.
type Result struct {
	// Matches pairs each matched actual lead with the expected lead it
	// satisfied.
	Matches []Pair

	// Missing holds expected leads with no available match.
	Missing []types.Lead

	// Extra holds actual leads never consumed by a match.
	Extra []types.Lead
}

// Recall returns the fraction of expected leads that were matched and whether
// it is defined. It is undefined when there were no expected leads.
func (r Result) Recall() (float64, bool) {
	total := len(r.Matches) + len(r.Missing)
	if total == 0 {
		return 0, false
	}
	return float64(len(r.Matches)) / float64(total), true
}

// Compare partitions actual against expected. Two leads are the same entity
// when their normalized names are equal, or their normalized emails are equal
// with both sides non-empty. Matching is greedy and one-to-one: expected
// leads are processed in list order, each taking the first unmatched actual
// lead in list order; a consumed actual lead cannot match a later expected
// lead. Pure function; neither input list is modified.
func Compare(actual, expected []types.Lead) Result {
	consumed := make([]bool, len(actual))
	var res Result

	for _, want := range expected {
		idx := -1
		for i, got := range actual {
			if consumed[i] {
				continue
			}
			if sameLead(got, want) {
				idx = i
				break
			}
		}
		if idx < 0 {
			res.Missing = append(res.Missing, want)
			continue
		}
		consumed[idx] = true
		res.Matches = append(res.Matches, Pair{Actual: actual[idx], Expected: want})
	}

	for i, got := range actual {
		if !consumed[i] {
			res.Extra = append(res.Extra, got)
		}
	}

	return res
}

// sameLead applies the identity rule: name equality OR email equality, each
// on normalized values with both sides non-empty. Name-only equality
// suffices even when emails conflict.
func sameLead(a, b types.Lead) bool {
	if an, bn := Normalize(a.Name), Normalize(b.Name); an != "" && an == bn {
		return true
	}
	if ae, be := Normalize(a.Email), Normalize(b.Email); ae != "" && ae == be {
		return true
	}
	return false
}

// Normalize case-folds, trims, and collapses interior whitespace runs to a
// single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
