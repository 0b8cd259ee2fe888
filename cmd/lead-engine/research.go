// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lead-engine/internal/agent"
	"github.com/pdiddy/lead-engine/internal/query"
	"github.com/pdiddy/lead-engine/internal/tavily"
	"github.com/pdiddy/lead-engine/pkg/types"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "lead-engine/0.1"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run one lead research query with an agent pattern",
	Long: `Research runs a single lead query. The query is composed from the who,
what, where, and context parameters; the chosen agent pattern researches
it with web search, site mapping, and page extraction tools, and the
structured leads are printed.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("who", "", "roles, titles, or professions to find (required)")
	researchCmd.Flags().String("what", "", "industry, field, or specialization (required)")
	researchCmd.Flags().String("where", "", "geographic location, institution, or organization type")
	researchCmd.Flags().String("context", "", "additional qualifiers")
	researchCmd.Flags().String("pattern", "single", "agent pattern: single or multi")
	researchCmd.Flags().String("model", "", "model for the orchestrator or single agent")
	researchCmd.Flags().String("researcher-model", "", "model for delegated researcher agents")
	researchCmd.Flags().Int("search-results", 5, "web search results per browse_web call")
	researchCmd.Flags().Int("max-tool-rounds", 30, "tool-use rounds before the agent is stopped")
	researchCmd.Flags().Bool("json", false, "output leads as JSON")

	rootCmd.AddCommand(researchCmd)
}

// agentConfig assembles the agent runtime configuration from flags, config
// file, and loaded secrets.
func agentConfig(cmd *cobra.Command) types.AgentConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("agent.model")
	}
	if model == "" {
		model = defaultModel
	}
	researcherModel, _ := cmd.Flags().GetString("researcher-model")
	if researcherModel == "" {
		researcherModel = viper.GetString("agent.researcher_model")
	}
	searchResults, _ := cmd.Flags().GetInt("search-results")
	maxRounds, _ := cmd.Flags().GetInt("max-tool-rounds")

	return types.AgentConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     secretDefault("anthropic-api-key", viper.GetString("agent.api_key")),
			MaxRetries: 3,
		},
		ResearcherModel: researcherModel,
		TavilyAPIKey:    secretDefault("tavily-api-key", viper.GetString("agent.tavily_api_key")),
		SearchResults:   searchResults,
		MaxToolRounds:   maxRounds,
	}
}

// newRunner wires an agent runner from configuration.
func newRunner(cfg types.AgentConfig) *agent.Runner {
	searcher := &tavily.Client{
		HTTP:   &http.Client{Timeout: defaultTimeout},
		APIKey: cfg.TavilyAPIKey,
		Config: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		MaxRetries: cfg.MaxRetries,
	}
	return agent.NewRunner(cfg, searcher, os.Stderr)
}

func runResearch(cmd *cobra.Command, args []string) error {
	who, _ := cmd.Flags().GetString("who")
	what, _ := cmd.Flags().GetString("what")
	if who == "" || what == "" {
		return fmt.Errorf("both --who and --what are required")
	}
	where, _ := cmd.Flags().GetString("where")
	contextQuery, _ := cmd.Flags().GetString("context")
	pattern, _ := cmd.Flags().GetString("pattern")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := agentConfig(cmd)
	if cfg.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: add .secrets/anthropic-api-key or set agent.api_key")
	}
	if cfg.TavilyAPIKey == "" {
		return fmt.Errorf("no Tavily API key: add .secrets/tavily-api-key or set agent.tavily_api_key")
	}

	queryString := query.Build(types.ResearchParams{
		WhoQuery:     who,
		WhatQuery:    what,
		WhereQuery:   where,
		ContextQuery: contextQuery,
	}, query.Options{})

	runner := newRunner(cfg)

	var results types.LeadResults
	var err error
	switch pattern {
	case "single":
		results, err = runner.RunSingle(context.Background(), queryString)
	case "multi":
		results, err = runner.RunMulti(context.Background(), queryString)
	default:
		return fmt.Errorf("unknown pattern %q: use single or multi", pattern)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Println(results.String())
	fmt.Fprintf(os.Stderr, "\n%d lead(s) found\n", len(results.Leads))
	return nil
}
