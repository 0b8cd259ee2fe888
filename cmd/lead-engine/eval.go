// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lead-engine/internal/agent"
	"github.com/pdiddy/lead-engine/internal/eval"
	"github.com/pdiddy/lead-engine/pkg/types"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate an agent pattern against a lead corpus",
	Long: `Eval runs the research agent over a set of evaluation cases and grades
each output against the expected leads. Cases come from a human-verified
YAML file (--cases) or a generated corpus JSON file (--corpus). Each case
is scored on lead recall and a model-graded quality score; the run ends
with a summary table.`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("cases", "", "human-verified cases YAML file")
	evalCmd.Flags().String("corpus", "", "generated corpus JSON file")
	evalCmd.Flags().String("pattern", "single", "agent pattern: single or multi")
	evalCmd.Flags().String("model", "", "model for the agent under evaluation")
	evalCmd.Flags().String("researcher-model", "", "model for delegated researcher agents")
	evalCmd.Flags().String("grader-model", "", "model for the output grader (defaults to the agent model)")
	evalCmd.Flags().Float64("threshold", 0.5, "grader score at or above which a case passes")
	evalCmd.Flags().Int("limit", 0, "run at most this many cases (0 = all)")
	evalCmd.Flags().Int("search-results", 5, "web search results per browse_web call")
	evalCmd.Flags().Int("max-tool-rounds", 30, "tool-use rounds before the agent is stopped")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	casesPath, _ := cmd.Flags().GetString("cases")
	corpusPath, _ := cmd.Flags().GetString("corpus")
	if (casesPath == "") == (corpusPath == "") {
		return fmt.Errorf("exactly one of --cases or --corpus is required")
	}

	cfg := agentConfig(cmd)
	if cfg.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: add .secrets/anthropic-api-key or set agent.api_key")
	}
	if cfg.TavilyAPIKey == "" {
		return fmt.Errorf("no Tavily API key: add .secrets/tavily-api-key or set agent.tavily_api_key")
	}

	var cases []eval.Case
	var err error
	if casesPath != "" {
		cases, err = eval.LoadVerified(casesPath)
	} else {
		cases, err = eval.LoadSamples(corpusPath)
	}
	if err != nil {
		return err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(cases) {
		cases = cases[:limit]
	}
	if len(cases) == 0 {
		return fmt.Errorf("no evaluation cases loaded")
	}

	runner := newRunner(cfg)
	pattern, _ := cmd.Flags().GetString("pattern")
	var agentFn eval.AgentFunc
	switch pattern {
	case "single":
		agentFn = runner.RunSingle
	case "multi":
		agentFn = runner.RunMulti
	default:
		return fmt.Errorf("unknown pattern %q: use single or multi", pattern)
	}

	evalCfg := evalConfig(cmd, cfg.AIConfig)

	evalRunner := &eval.Runner{
		Agent: agentFn,
		Grader: &eval.Grader{
			Client: &agent.Client{
				APIKey:     evalCfg.APIKey,
				HTTP:       &http.Client{Timeout: defaultTimeout},
				MaxRetries: evalCfg.MaxRetries,
			},
			Model:     evalCfg.GraderModel,
			Threshold: evalCfg.Threshold,
		},
	}

	report, err := evalRunner.RunAll(context.Background(), cases, os.Stdout)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d case(s) failed to evaluate", report.Failed)
	}
	return nil
}

// evalConfig assembles the grader configuration from flags and config file,
// reusing the agent's credentials.
func evalConfig(cmd *cobra.Command, ai types.AIConfig) types.EvalConfig {
	graderModel, _ := cmd.Flags().GetString("grader-model")
	if graderModel == "" {
		graderModel = viper.GetString("eval.grader_model")
	}
	if graderModel == "" {
		graderModel = ai.Model
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	return types.EvalConfig{
		AIConfig:    ai,
		GraderModel: graderModel,
		Threshold:   threshold,
	}
}
