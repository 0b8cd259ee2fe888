// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lead-engine/internal/generate"
	"github.com/pdiddy/lead-engine/internal/httputil"
	"github.com/pdiddy/lead-engine/internal/openalex"
	"github.com/pdiddy/lead-engine/pkg/types"
)

const (
	// gateWidth and gateDelay bound the sustained OpenAlex call rate for
	// the whole generation run.
	gateWidth = 10
	gateDelay = 100 * time.Millisecond
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the synthetic evaluation corpus from OpenAlex",
	Long: `Generate mines OpenAlex for (topic, locality) combinations and builds one
evaluation sample per combination: a research query plus the researchers
the agent is expected to find. Progress is checkpointed after every batch,
so an interrupted run resumes where it left off.

Exit codes: 0 on success, 1 when the run completed but some combinations
were skipped, 2 on a fatal error.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Int("target", 1000, "number of (topic, locality) combinations to gather")
	generateCmd.Flags().Int("batch-size", 250, "combinations per checkpoint batch")
	generateCmd.Flags().Int("parallel", 3, "concurrent sample builds within a batch")
	generateCmd.Flags().Int("max-results", 25, "works fetched per combination")
	generateCmd.Flags().Int("start-year", 2023, "only use works published after this year")
	generateCmd.Flags().Float64("country-ratio", 0.1, "fraction of combinations scoped to a country")
	generateCmd.Flags().Float64("city-ratio", 0.4, "fraction of combinations scoped to a city")
	generateCmd.Flags().String("checkpoint-dir", "checkpoints", "directory for checkpoint files")
	generateCmd.Flags().String("output", "synthetic_queries.json", "final corpus file")
	generateCmd.Flags().String("email", "", "contact email for OpenAlex polite pool access")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := generationConfig(cmd)

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = secretDefault("openalex-email", viper.GetString("generation.email"))
	}

	source := &openalex.Client{
		HTTP:  &http.Client{Timeout: defaultTimeout},
		Email: email,
		Config: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		MaxRetries: 3,
		Gate:       httputil.NewGate(gateWidth, gateDelay),
	}

	gen := &generate.Generator{
		Source:    source,
		Countries: generate.DefaultCountries,
		Config:    cfg,
		Store:     &generate.Store{Dir: cfg.CheckpointDir},
	}

	summary, err := gen.Run(context.Background(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("corpus: %d samples (%d resumed, %d built, %d skipped)\n",
		summary.Total(), summary.Resumed, summary.Built, summary.Skipped)

	if summary.HasFailures() {
		return fmt.Errorf("%d combination(s) skipped", summary.Skipped)
	}
	return nil
}

func generationConfig(cmd *cobra.Command) types.GenerationConfig {
	target, _ := cmd.Flags().GetInt("target")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	parallel, _ := cmd.Flags().GetInt("parallel")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	startYear, _ := cmd.Flags().GetInt("start-year")
	countryRatio, _ := cmd.Flags().GetFloat64("country-ratio")
	cityRatio, _ := cmd.Flags().GetFloat64("city-ratio")
	checkpointDir, _ := cmd.Flags().GetString("checkpoint-dir")
	output, _ := cmd.Flags().GetString("output")

	return types.GenerationConfig{
		TargetQueries:      target,
		BatchSize:          batchSize,
		MaxResultsPerQuery: maxResults,
		CheckpointDir:      checkpointDir,
		OutputFile:         output,
		CountryRatio:       countryRatio,
		CityRatio:          cityRatio,
		InstitutionRatio:   1 - countryRatio - cityRatio,
		ParallelBatchSize:  parallel,
		StartYear:          startYear,
	}
}
