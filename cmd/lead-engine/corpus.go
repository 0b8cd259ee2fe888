// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lead-engine/internal/corpus"
	"github.com/pdiddy/lead-engine/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local sample corpus (import, query, stats)",
	Long: `Corpus manages a local SQLite store of evaluation samples. Use
subcommands to import a generated corpus file, query stored samples,
or show corpus statistics.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a generated corpus JSON file into the store",
	Long: `Import reads a corpus JSON file (as written by generate) and stores
its samples and expected leads. Samples whose query string is already
present are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Import(context.Background(), args[0], os.Stdout)
	return err
}

// --- query subcommand ---

var corpusQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query stored samples by type or topic",
	Long: `Query lists stored samples, newest first. Filter by query type
(--type) or topic substring (--topic).`,
	RunE: runCorpusQuery,
}

func runCorpusQuery(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	queryType, _ := cmd.Flags().GetString("type")
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.Query(context.Background(), corpus.QueryOptions{
		QueryType: queryType,
		Topic:     topic,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(records, jsonOutput)
}

func formatQueryOutput(records []corpus.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No samples found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-40s  %-25s  %s\n",
		"ID", "Type", "Topic", "Locality", "Leads")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range records {
		topic := r.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		locality := r.Institution
		if locality == "" {
			locality = strings.TrimPrefix(r.City+", "+r.Country, ", ")
		}
		if len(locality) > 25 {
			locality = locality[:22] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-40s  %-25s  %d\n",
			r.ID, r.QueryType, topic, locality, len(r.Leads))
	}

	fmt.Fprintf(os.Stdout, "\n%d samples\n", len(records))
	return nil
}

// --- stats subcommand ---

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sample and lead counts for the corpus",
	RunE:  runCorpusStats,
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Samples: %d\n", stats.Samples)
	fmt.Printf("Leads:   %d\n", stats.Leads)
	for _, queryType := range sortedStatKeys(stats.ByQueryType) {
		fmt.Printf("  %-20s %d\n", queryType, stats.ByQueryType[queryType])
	}
	return nil
}

func sortedStatKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- shared helpers ---

func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	dir, _ := cmd.Flags().GetString("corpus-dir")
	if dir == "" {
		dir = "corpus"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.CorpusConfig{
		Dir:        dir,
		MaxResults: maxResults,
	}
}

func init() {
	corpusImportCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus store")

	corpusQueryCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus store")
	corpusQueryCmd.Flags().String("type", "", "filter by query type")
	corpusQueryCmd.Flags().String("topic", "", "filter by topic substring")
	corpusQueryCmd.Flags().Int("limit", 0, "maximum number of samples to return")
	corpusQueryCmd.Flags().Int("max-results", 20, "default result cap when --limit is unset")
	corpusQueryCmd.Flags().Bool("json", false, "output samples as JSON")

	corpusStatsCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus store")

	corpusCmd.AddCommand(corpusImportCmd, corpusQueryCmd, corpusStatsCmd)
	rootCmd.AddCommand(corpusCmd)
}
