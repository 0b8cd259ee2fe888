// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lead-engine/internal/agent"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// graderStub serves scripted grader replies, one per call, and records the
// prompts it was asked to grade.
func graderStub(t *testing.T, replies ...string) (*agent.Client, *[]string) {
	t.Helper()
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req agent.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Messages[0].Content[0].Text)

		require.NotEmpty(t, replies, "unexpected extra grader call")
		reply := replies[0]
		replies = replies[1:]

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"content": [{"type": "text", "text": %q}], "stop_reason": "end_turn"}`, reply)
	}))
	t.Cleanup(srv.Close)
	return &agent.Client{APIKey: "k", URL: srv.URL}, &prompts
}

func expectedLeads() types.LeadResults {
	return types.LeadResults{Leads: []types.Lead{
		{Name: "Carla Prado", Email: "carla.prado@ualberta.ca"},
		{Name: "Diana Mager", Email: "mager@ualberta.ca"},
	}}
}

func TestGraderParsesVerdict(t *testing.T) {
	client, prompts := graderStub(t, `{"score": 0.8, "reasoning": "most expected leads present"}`)
	g := &Grader{Client: client, Model: "claude-sonnet-4-5-20250929", Threshold: 0.5}

	grade, err := g.Grade(context.Background(), "the query", "actual text", "expected text")
	require.NoError(t, err)
	assert.Equal(t, 0.8, grade.Score)
	assert.Equal(t, "most expected leads present", grade.Reasoning)
	assert.True(t, g.Passed(grade))

	require.Len(t, *prompts, 1)
	prompt := (*prompts)[0]
	assert.Contains(t, prompt, "the query")
	assert.Contains(t, prompt, "actual text")
	assert.Contains(t, prompt, "expected text")
	assert.Contains(t, prompt, "Heavily penalize")
}

func TestGraderRejectsOutOfRangeScore(t *testing.T) {
	client, _ := graderStub(t, `{"score": 1.4, "reasoning": "enthusiastic"}`)
	g := &Grader{Client: client, Threshold: 0.5}

	_, err := g.Grade(context.Background(), "q", "a", "e")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestGraderThreshold(t *testing.T) {
	g := &Grader{Threshold: 0.5}
	assert.True(t, g.Passed(Grade{Score: 0.5}))
	assert.False(t, g.Passed(Grade{Score: 0.49}))
}

func TestRunCase(t *testing.T) {
	client, _ := graderStub(t, `{"score": 0.6, "reasoning": "one lead missing"}`)
	r := &Runner{
		Agent: func(_ context.Context, _ string) (types.LeadResults, error) {
			return types.LeadResults{Leads: []types.Lead{
				{Name: "Carla Prado", Email: "carla.prado@ualberta.ca"},
				{Name: "Unrelated Person"},
			}}, nil
		},
		Grader: &Grader{Client: client, Threshold: 0.5},
	}

	var buf bytes.Buffer
	outcome, err := r.RunCase(context.Background(), Case{
		Name:     "nutrition-edmonton",
		Query:    "Find nutrition researchers in Edmonton",
		Expected: expectedLeads(),
	}, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Matched)
	assert.Equal(t, 1, outcome.Missing)
	assert.Equal(t, 1, outcome.Extra)
	require.True(t, outcome.RecallOK)
	assert.InDelta(t, 0.5, outcome.Recall, 1e-9)
	assert.Equal(t, 0.6, outcome.Grade.Score)
	assert.True(t, outcome.Passed)

	out := buf.String()
	assert.Contains(t, out, "nutrition-edmonton")
	assert.Contains(t, out, "Diana Mager")
	assert.Contains(t, out, "Score: 0.60 (PASS)")
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	client, _ := graderStub(t, `{"score": 0.9, "reasoning": "good"}`)

	calls := 0
	r := &Runner{
		Agent: func(_ context.Context, _ string) (types.LeadResults, error) {
			calls++
			if calls == 1 {
				return types.LeadResults{}, fmt.Errorf("model overloaded")
			}
			return expectedLeads(), nil
		},
		Grader: &Grader{Client: client, Threshold: 0.5},
	}

	cases := []Case{
		{Name: "first", Query: "q1", Expected: expectedLeads()},
		{Name: "second", Query: "q2", Expected: expectedLeads()},
	}

	var buf bytes.Buffer
	report, err := r.RunAll(context.Background(), cases, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "second", report.Outcomes[0].Name)
	assert.Equal(t, 1, report.Passes())
	assert.Equal(t, 0.9, report.MeanScore())

	mean, ok := report.MeanRecall()
	require.True(t, ok)
	assert.InDelta(t, 1.0, mean, 1e-9)

	out := buf.String()
	assert.Contains(t, out, "case failed: running agent for first: model overloaded")
	assert.Contains(t, out, "1/1 passed")
	assert.Contains(t, out, "1 failed to evaluate")
}

func TestLoadSamples(t *testing.T) {
	samples := []types.Sample{{
		QueryString:     "Find me as many leads as possible...",
		QueryType:       types.QueryInstitutionFocused,
		ExpectedResults: expectedLeads(),
	}}
	data, err := json.Marshal(samples)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cases, err := LoadSamples(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "institution_focused-001", cases[0].Name)
	assert.Equal(t, samples[0].QueryString, cases[0].Query)
	assert.Len(t, cases[0].Expected.Leads, 2)
}

func TestLoadVerified(t *testing.T) {
	yamlDoc := `
edmonton-human-nutrition:
  query_params:
    who_query: professors
    what_query: Human Nutrition
    where_query: Human Nutrition Research Unit at University of Alberta
    context_query: professors leading a lab
  expected_results:
    leads:
      - name: Carla Prado
        email: carla.prado@ualberta.ca
      - name: Diana Mager
        email: mager@ualberta.ca
`
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cases, err := LoadVerified(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "edmonton-human-nutrition", cases[0].Name)
	assert.Contains(t, cases[0].Query, "Who: professors")
	assert.Contains(t, cases[0].Query, "What is the field of study: Human Nutrition")
	assert.Len(t, cases[0].Expected.Leads, 2)
}

func TestLoadVerifiedRejectsEmptyLeads(t *testing.T) {
	yamlDoc := `
empty-case:
  query_params:
    who_query: professors
    what_query: Human Nutrition
  expected_results:
    leads: []
`
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	_, err := LoadVerified(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no expected leads")
}
