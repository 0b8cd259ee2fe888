// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdiddy/lead-engine/internal/openalex"
	"github.com/pdiddy/lead-engine/internal/sample"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// DefaultCountries is the default target-country set for corpus
// generation, country code to display name.
var DefaultCountries = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
}

// Source is the slice of the OpenAlex client the generator needs. The full
// client satisfies it; tests supply fakes.
type Source interface {
	sample.Source
	PageWorks(ctx context.Context, filter openalex.WorksFilter, perPage int, fn func(openalex.Work) (bool, error)) error
	SearchInstitutions(ctx context.Context, name string, perPage int) ([]openalex.Institution, error)
}

// Gatherer pages through recent works and accumulates the combination
// inventory for a generation run.
type Gatherer struct {
	Source Source

	// Cache resolves institution cities; shared with the sample builder.
	Cache *sample.CityCache

	// Countries is the target set, country code to display name.
	Countries map[string]string

	Config types.GenerationConfig
}

// Gather pages works published after the configured start year in the
// target countries and fills the three locality maps, each capped by its
// ratio of the target; the three ratios must sum to 1. Paging stops once
// the summed combination count
// reaches the target. Institutions whose city cannot be resolved simply
// contribute no city entry.
func (g *Gatherer) Gather(ctx context.Context, w io.Writer) (GatheredData, error) {
	sum := g.Config.CountryRatio + g.Config.CityRatio + g.Config.InstitutionRatio
	if math.Abs(sum-1) > 0.001 {
		return GatheredData{}, fmt.Errorf("locality ratios sum to %.3f, want 1.0", sum)
	}

	data := NewGatheredData()

	countryTarget := int(float64(g.Config.TargetQueries) * g.Config.CountryRatio)
	cityTarget := int(float64(g.Config.TargetQueries) * g.Config.CityRatio)
	instTarget := g.Config.TargetQueries - countryTarget - cityTarget

	filter := openalex.WorksFilter{
		PublicationYearAfter: g.Config.StartYear,
		CountryCode:          strings.Join(sortedKeys(g.Countries), "|"),
	}

	scanned := 0
	err := g.Source.PageWorks(ctx, filter, g.Config.MaxResultsPerQuery, func(work openalex.Work) (bool, error) {
		scanned++
		topicID := work.PrimaryTopic.ID
		if topicID == "" {
			return true, nil
		}

		for _, authorship := range work.Authorships {
			for _, inst := range authorship.Institutions {
				if _, ok := g.Countries[inst.CountryCode]; !ok {
					continue
				}

				if countPerKey(data.TopicsPerCountry) < countryTarget {
					data.TopicsPerCountry[inst.CountryCode] = appendUnique(
						data.TopicsPerCountry[inst.CountryCode], topicID)
				}

				if countCityTopics(data.TopicsPerCity) < cityTarget {
					city, err := g.resolveCity(ctx, inst)
					if err != nil {
						fmt.Fprintf(w, "skipping city for %s: %v\n", openalex.IDCode(inst.ID), err)
					} else if city != "" {
						data.TopicsPerCity[city] = appendUniqueCity(
							data.TopicsPerCity[city], CityTopic{topicID, inst.CountryCode})
					}
				}

				if countPerKey(data.TopicsPerInstitution) < instTarget {
					data.TopicsPerInstitution[inst.ID] = appendUnique(
						data.TopicsPerInstitution[inst.ID], topicID)
				}
			}
		}

		if data.CombinationCount() >= g.Config.TargetQueries {
			return false, nil
		}
		if scanned%1000 == 0 {
			fmt.Fprintf(w, "gathered %d/%d combinations from %d works\n",
				data.CombinationCount(), g.Config.TargetQueries, scanned)
		}
		return true, nil
	})
	if err != nil {
		return GatheredData{}, fmt.Errorf("gathering combinations: %w", err)
	}

	data.CityCache = g.Cache.Snapshot()
	fmt.Fprintf(w, "gather complete: %d combinations from %d works\n",
		data.CombinationCount(), scanned)
	return data, nil
}

// resolveCity looks up an institution's city, falling back to a
// display-name search when the id lookup fails.
func (g *Gatherer) resolveCity(ctx context.Context, inst openalex.Institution) (string, error) {
	if city, ok := g.Cache.Get(inst.ID); ok {
		return city, nil
	}

	full, err := g.Source.GetInstitution(ctx, inst.ID)
	if err != nil {
		matches, serr := g.Source.SearchInstitutions(ctx, inst.DisplayName, 1)
		if serr != nil || len(matches) == 0 {
			return "", err
		}
		full = matches[0]
	}

	g.Cache.Put(inst.ID, full.Geo.City)
	return full.Geo.City, nil
}

func countPerKey(m map[string][]string) int {
	n := 0
	for _, topics := range m {
		n += len(topics)
	}
	return n
}

func countCityTopics(m map[string][]CityTopic) int {
	n := 0
	for _, topics := range m {
		n += len(topics)
	}
	return n
}

func appendUnique(topics []string, topicID string) []string {
	for _, t := range topics {
		if t == topicID {
			return topics
		}
	}
	return append(topics, topicID)
}

func appendUniqueCity(topics []CityTopic, ct CityTopic) []CityTopic {
	for _, t := range topics {
		if t == ct {
			return topics
		}
	}
	return append(topics, ct)
}
