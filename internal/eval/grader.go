// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs the lead-research evaluation harness: each case's query
// is given to an agent pattern, the actual leads are matched against the
// expected leads, and an LLM grader scores the textual correctness of the
// output.
package eval

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/lead-engine/internal/agent"
)

// graderPromptTmpl asks the grader model to score how correct the actual
// output is relative to the expected output.
var graderPromptTmpl = template.Must(template.New("grader").Parse(`You are grading the output of a lead research agent. Determine if the actual output contains all the information from the expected output.

Evaluation steps:
1. Check if all the leads in the expected output are present in the actual output.
2. Check the quality of the leads in the actual output compared to the expected output.
3. Heavily penalize leads in the actual output that are not present in the expected output.

Query:
{{.Query}}

Expected output:
{{.Expected}}

Actual output:
{{.Actual}}

Respond with ONLY a JSON object: {"score": <float between 0.0 and 1.0>, "reasoning": "<one paragraph>"}.`))

// Grade is the grader's verdict for one case.
type Grade struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Grader scores agent output with an LLM judge.
type Grader struct {
	Client *agent.Client
	Model  string

	// Threshold is the score at or above which a case passes.
	Threshold float64
}

// Passed reports whether a grade clears the grader's threshold.
func (g *Grader) Passed(grade Grade) bool {
	return grade.Score >= g.Threshold
}

// Grade scores the actual output against the expected output for one query.
func (g *Grader) Grade(ctx context.Context, query, actual, expected string) (Grade, error) {
	var prompt bytes.Buffer
	err := graderPromptTmpl.Execute(&prompt, struct {
		Query, Expected, Actual string
	}{Query: query, Expected: expected, Actual: actual})
	if err != nil {
		return Grade{}, fmt.Errorf("rendering grader prompt: %w", err)
	}

	resp, err := g.Client.Complete(ctx, agent.Request{
		Model: g.Model,
		Messages: []agent.Message{{
			Role:    "user",
			Content: []agent.ContentBlock{agent.TextBlock(prompt.String())},
		}},
	})
	if err != nil {
		return Grade{}, fmt.Errorf("grading: %w", err)
	}

	var grade Grade
	if err := agent.ParseJSONOutput(resp.Text(), &grade); err != nil {
		return Grade{}, fmt.Errorf("grader output: %w", err)
	}
	if grade.Score < 0 || grade.Score > 1 {
		return Grade{}, fmt.Errorf("grader score %v out of range [0,1]", grade.Score)
	}
	return grade, nil
}
