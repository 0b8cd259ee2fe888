// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lead-engine/internal/match"
	"github.com/pdiddy/lead-engine/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare [expected] [actual]",
	Short: "Compare two lead files and report matches, missing, and extras",
	Long: `Compare reads two lead JSON files (a bare lead array or a {"leads": []}
object) and matches the actual leads against the expected ones by
normalized name or email. It prints the per-lead comparison and the
recall summary.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	expected, err := loadLeads(args[0])
	if err != nil {
		return err
	}
	actual, err := loadLeads(args[1])
	if err != nil {
		return err
	}

	result := match.Compare(actual, expected)
	match.FormatReport(result, os.Stdout)
	match.FormatSummary(result, os.Stdout)
	return nil
}

// loadLeads reads a lead file as either a bare JSON array or a LeadResults
// object.
func loadLeads(path string) ([]types.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading leads file: %w", err)
	}

	var leads []types.Lead
	if err := json.Unmarshal(data, &leads); err == nil {
		return leads, nil
	}

	var results types.LeadResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing leads file %s: %w", path, err)
	}
	return results.Leads, nil
}
