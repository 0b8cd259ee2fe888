// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/lead-engine/internal/match"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// AgentFunc runs one research query and returns the structured leads. Both
// agent patterns satisfy it.
type AgentFunc func(ctx context.Context, query string) (types.LeadResults, error)

// Case is one evaluation fixture.
type Case struct {
	Name     string
	Query    string
	Expected types.LeadResults
}

// Outcome is the result of evaluating one case.
type Outcome struct {
	Name    string
	Matched int
	Missing int
	Extra   int

	// Recall is the fraction of expected leads found; RecallOK is false
	// when the case had no expected leads.
	Recall   float64
	RecallOK bool

	Grade  Grade
	Passed bool
}

// Report aggregates outcomes across a run.
type Report struct {
	Outcomes []Outcome
	Failed   int
}

// Passes returns the number of cases that cleared the grader threshold.
func (r Report) Passes() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Passed {
			n++
		}
	}
	return n
}

// MeanScore returns the average grader score across evaluated cases.
func (r Report) MeanScore() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range r.Outcomes {
		sum += o.Grade.Score
	}
	return sum / float64(len(r.Outcomes))
}

// MeanRecall returns the average recall across cases where recall is
// defined.
func (r Report) MeanRecall() (float64, bool) {
	sum, n := 0.0, 0
	for _, o := range r.Outcomes {
		if o.RecallOK {
			sum += o.Recall
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Runner evaluates cases against one agent pattern.
type Runner struct {
	Agent  AgentFunc
	Grader *Grader
}

// RunCase evaluates one case: run the agent, display the lead comparison,
// and grade the output.
func (r *Runner) RunCase(ctx context.Context, c Case, w io.Writer) (Outcome, error) {
	fmt.Fprintf(w, "=== %s ===\n%s\n", c.Name, c.Query)

	actual, err := r.Agent(ctx, c.Query)
	if err != nil {
		return Outcome{}, fmt.Errorf("running agent for %s: %w", c.Name, err)
	}

	res := match.Compare(actual.Leads, c.Expected.Leads)
	match.FormatReport(res, w)
	match.FormatSummary(res, w)

	grade, err := r.Grader.Grade(ctx, c.Query, actual.String(), c.Expected.String())
	if err != nil {
		return Outcome{}, fmt.Errorf("grading %s: %w", c.Name, err)
	}

	outcome := Outcome{
		Name:    c.Name,
		Matched: len(res.Matches),
		Missing: len(res.Missing),
		Extra:   len(res.Extra),
		Grade:   grade,
		Passed:  r.Grader.Passed(grade),
	}
	outcome.Recall, outcome.RecallOK = res.Recall()

	fmt.Fprintf(w, "Score: %.2f (%s)\n%s\n\n", grade.Score, passLabel(outcome.Passed), grade.Reasoning)
	return outcome, nil
}

// RunAll evaluates every case. A case whose agent run or grading fails is
// counted and skipped; the harness keeps going.
func (r *Runner) RunAll(ctx context.Context, cases []Case, w io.Writer) (Report, error) {
	var report Report
	for _, c := range cases {
		outcome, err := r.RunCase(ctx, c, w)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			fmt.Fprintf(w, "case failed: %v\n\n", err)
			report.Failed++
			continue
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	formatReport(report, w)
	return report, nil
}

func formatReport(report Report, w io.Writer) {
	fmt.Fprintf(w, "%-40s %8s %8s %6s\n", "CASE", "RECALL", "SCORE", "PASS")
	for _, o := range report.Outcomes {
		recall := "N/A"
		if o.RecallOK {
			recall = fmt.Sprintf("%.1f%%", o.Recall*100)
		}
		fmt.Fprintf(w, "%-40s %8s %8.2f %6s\n", truncateName(o.Name, 40), recall, o.Grade.Score, passLabel(o.Passed))
	}

	fmt.Fprintf(w, "\n%d/%d passed", report.Passes(), len(report.Outcomes))
	if mean, ok := report.MeanRecall(); ok {
		fmt.Fprintf(w, ", mean recall %.1f%%", mean*100)
	}
	fmt.Fprintf(w, ", mean score %.2f", report.MeanScore())
	if report.Failed > 0 {
		fmt.Fprintf(w, ", %d failed to evaluate", report.Failed)
	}
	fmt.Fprintln(w)
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
