// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lead-engine/internal/query"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// LoadSamples reads a generated corpus file (a JSON array of samples) and
// converts each sample into an evaluation case.
func LoadSamples(path string) ([]Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	var samples []types.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}

	cases := make([]Case, len(samples))
	for i, s := range samples {
		cases[i] = Case{
			Name:     fmt.Sprintf("%s-%03d", s.QueryType, i+1),
			Query:    s.QueryString,
			Expected: s.ExpectedResults,
		}
	}
	return cases, nil
}

// LoadVerified reads human-verified evaluation cases from a YAML file: a
// mapping of case name to query params and expected leads. The query string
// is rendered from the params the same way generated samples render theirs.
func LoadVerified(path string) ([]Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cases %s: %w", path, err)
	}

	var byName map[string]types.EvalCase
	if err := yaml.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("parsing cases %s: %w", path, err)
	}

	var cases []Case
	for _, name := range sortedNames(byName) {
		ec := byName[name]
		if len(ec.ExpectedResults.Leads) == 0 {
			return nil, fmt.Errorf("case %s has no expected leads", name)
		}
		cases = append(cases, Case{
			Name:     name,
			Query:    query.Build(ec.QueryParams, query.Options{}),
			Expected: ec.ExpectedResults,
		})
	}
	return cases, nil
}

func sortedNames(m map[string]types.EvalCase) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
