// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/lead-engine/pkg/types"
)

const toolRunResearcher = "run_researcher"

// researcherToolDef describes the orchestrator's delegation tool.
func researcherToolDef() ToolDef {
	return ToolDef{
		Name:        toolRunResearcher,
		Description: "Delegate one scoped research task to a researcher agent. Returns the researcher's structured findings.",
		InputSchema: objectSchema(map[string]string{
			"task": "The specific research task: objective, scope boundaries, and suggested search strategy.",
		}, "task"),
	}
}

// RunMulti executes the multi-agent pattern: an orchestrator decomposes the
// query and delegates scoped tasks to researcher agents, each running its
// own tool loop over the web tools, then merges their findings.
func (r *Runner) RunMulti(ctx context.Context, query string) (types.LeadResults, error) {
	loop := &toolLoop{
		Client:      r.client,
		Model:       r.cfg.Model,
		System:      orchestratorPrompt,
		Tools:       []ToolDef{researcherToolDef()},
		Run:         r.runResearcherTool,
		MaxRounds:   r.cfg.MaxToolRounds,
		TokenBudget: r.cfg.HistoryTokenBudget,
		Log:         r.log,
	}

	text, err := loop.run(ctx, query)
	if err != nil {
		return types.LeadResults{}, fmt.Errorf("running orchestrator: %w", err)
	}

	var results types.LeadResults
	if err := ParseJSONOutput(text, &results); err != nil {
		return types.LeadResults{}, fmt.Errorf("orchestrator output: %w", err)
	}
	return results, nil
}

// runResearcherTool handles one run_researcher call. Researcher failures
// are reported to the orchestrator as text so it can re-plan instead of
// aborting the whole run.
func (r *Runner) runResearcherTool(ctx context.Context, name string, input json.RawMessage) string {
	if name != toolRunResearcher {
		return fmt.Sprintf("Unknown tool %q.", name)
	}

	var args struct {
		Task string `json:"task"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return fmt.Sprintf("Invalid tool input: %v", err)
	}

	results, err := r.runResearcher(ctx, args.Task)
	if err != nil {
		if r.log != nil {
			fmt.Fprintf(r.log, "researcher failed: %v\n", err)
		}
		return "The researcher could not complete this task. Re-plan or try a narrower task."
	}

	rendered, err := json.Marshal(results)
	if err != nil {
		return fmt.Sprintf("Could not serialize researcher results: %v", err)
	}
	return string(rendered)
}

// runResearcher executes one delegated task with its own tool loop.
func (r *Runner) runResearcher(ctx context.Context, task string) (types.ResearcherResults, error) {
	loop := &toolLoop{
		Client:      r.client,
		Model:       r.researcherModel(),
		System:      researcherPrompt,
		Tools:       webToolDefs(),
		Run:         r.tools.Run,
		MaxRounds:   r.cfg.MaxToolRounds,
		TokenBudget: r.cfg.HistoryTokenBudget,
		Log:         r.log,
	}

	text, err := loop.run(ctx, task)
	if err != nil {
		return types.ResearcherResults{}, err
	}

	var results types.ResearcherResults
	if err := ParseJSONOutput(text, &results); err != nil {
		return types.ResearcherResults{}, fmt.Errorf("researcher output: %w", err)
	}
	return results, nil
}
