// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/lead-engine/pkg/types"
)

const defaultSearchResults = 5

// Runner executes research queries with one of the agent patterns. The
// zero value is not usable; construct with NewRunner.
type Runner struct {
	client *Client
	tools  *WebTools
	cfg    types.AgentConfig
	log    io.Writer
}

// NewRunner wires a runner from configuration. Tool failures and per-call
// progress are logged to w.
func NewRunner(cfg types.AgentConfig, searcher Searcher, w io.Writer) *Runner {
	maxResults := cfg.SearchResults
	if maxResults <= 0 {
		maxResults = defaultSearchResults
	}
	return &Runner{
		client: &Client{APIKey: cfg.APIKey, MaxRetries: cfg.MaxRetries},
		tools: &WebTools{
			Searcher:   searcher,
			MaxResults: maxResults,
			Log:        w,
		},
		cfg: cfg,
		log: w,
	}
}

// RunSingle executes the single-agent pattern: one agent with the web tools
// researches the query end to end and returns its structured leads.
func (r *Runner) RunSingle(ctx context.Context, query string) (types.LeadResults, error) {
	loop := &toolLoop{
		Client:      r.client,
		Model:       r.cfg.Model,
		System:      singleAgentPrompt,
		Tools:       webToolDefs(),
		Run:         r.tools.Run,
		MaxRounds:   r.cfg.MaxToolRounds,
		TokenBudget: r.cfg.HistoryTokenBudget,
		Log:         r.log,
	}

	text, err := loop.run(ctx, query)
	if err != nil {
		return types.LeadResults{}, fmt.Errorf("running single agent: %w", err)
	}

	var results types.LeadResults
	if err := ParseJSONOutput(text, &results); err != nil {
		return types.LeadResults{}, fmt.Errorf("single agent output: %w", err)
	}
	return results, nil
}

func (r *Runner) researcherModel() string {
	if r.cfg.ResearcherModel != "" {
		return r.cfg.ResearcherModel
	}
	return r.cfg.Model
}
