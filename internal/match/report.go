// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/lead-engine/pkg/types"
)

// FormatSummary writes the comparison counts and recall to w.
func FormatSummary(res Result, w io.Writer) {
	expected := len(res.Matches) + len(res.Missing)
	actual := len(res.Matches) + len(res.Extra)

	fmt.Fprintln(w, "LEAD COMPARISON SUMMARY")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Expected leads: %d\n", expected)
	fmt.Fprintf(w, "Actual leads:   %d\n", actual)
	fmt.Fprintf(w, "Matches:        %d\n", len(res.Matches))
	fmt.Fprintf(w, "Missing:        %d\n", len(res.Missing))
	fmt.Fprintf(w, "Extra:          %d\n", len(res.Extra))

	if recall, ok := res.Recall(); ok {
		fmt.Fprintf(w, "\nRecall: %.1f%%\n", recall*100)
	} else {
		fmt.Fprintln(w, "\nRecall: N/A")
	}
}

// FormatReport writes the full comparison to w: the summary, a field-by-field
// view of each matched pair, and tables of missing and extra leads.
func FormatReport(res Result, w io.Writer) {
	FormatSummary(res, w)

	if len(res.Matches) > 0 {
		fmt.Fprintf(w, "\nMATCHED LEADS (%d)\n", len(res.Matches))
		for _, pair := range res.Matches {
			fmt.Fprintln(w, strings.Repeat("-", 60))
			fmt.Fprintln(w, pair.Actual.Name)
			writeFieldComparison(w, pair)
		}
	}

	writeLeadTable(w, "MISSING LEADS", res.Missing)
	writeLeadTable(w, "EXTRA LEADS", res.Extra)
}

// fieldRows lists the lead fields shown in match comparisons.
var fieldRows = []struct {
	label string
	get   func(types.Lead) string
}{
	{"Name", func(l types.Lead) string { return l.Name }},
	{"Title", func(l types.Lead) string { return l.Title }},
	{"Email", func(l types.Lead) string { return l.Email }},
	{"Phone", func(l types.Lead) string { return l.Phone }},
	{"Website", func(l types.Lead) string { return l.Website }},
}

func writeFieldComparison(w io.Writer, pair Pair) {
	for _, row := range fieldRows {
		actual := row.get(pair.Actual)
		expected := row.get(pair.Expected)

		mark := "x"
		switch {
		case actual != "" && expected != "":
			if Normalize(actual) == Normalize(expected) {
				mark = "ok"
			}
		case actual == expected: // both empty
			mark = "ok"
		}

		fmt.Fprintf(w, "  %-8s  %-35s  %-35s  %s\n",
			row.label, orNA(actual), orNA(expected), mark)
	}
}

func writeLeadTable(w io.Writer, title string, leads []types.Lead) {
	if len(leads) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s (%d)\n", title, len(leads))
	fmt.Fprintf(w, "%-25s  %-20s  %-30s  %s\n", "Name", "Title", "Email", "Website")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, l := range leads {
		fmt.Fprintf(w, "%-25s  %-20s  %-30s  %s\n",
			truncate(orNA(l.Name), 25), truncate(orNA(l.Title), 20),
			truncate(orNA(l.Email), 30), orNA(l.Website))
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
