// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sample builds synthetic evaluation fixtures: one (topic, locality)
// combination is turned into a Sample whose expected leads are the unique
// researchers OpenAlex credits on recent works matching the combination.
package sample

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/lead-engine/internal/openalex"
	"github.com/pdiddy/lead-engine/internal/query"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// ErrInsufficientData reports a combination that produced no leads, or
// works lacking topic data. An empty sample is never a valid fixture, so
// the builder fails instead of returning one; callers decide whether to
// skip the combination or abort.
var ErrInsufficientData = errors.New("insufficient data for sample")

// placeholderTitle is the fixed professional title attached to expected
// leads; synthetic fixtures cannot know a researcher's actual title.
const placeholderTitle = "Professor | Researcher | Scientist"

// LocalityKind selects how a combination is scoped geographically.
type LocalityKind string

const (
	// KindInstitution scopes to a single institution id.
	KindInstitution LocalityKind = "institution"

	// KindCity scopes to a (city, country code) pair.
	KindCity LocalityKind = "city"

	// KindCountry scopes to a whole country.
	KindCountry LocalityKind = "country"
)

// Combination is one unit of generation work: a topic and the locality to
// search it in.
type Combination struct {
	TopicID string `json:"topic_id"`

	Kind LocalityKind `json:"kind"`

	// InstitutionID is set for KindInstitution.
	InstitutionID string `json:"institution_id,omitempty"`

	// City is set for KindCity.
	City string `json:"city,omitempty"`

	// CountryCode is set for KindCity and KindCountry.
	CountryCode string `json:"country_code,omitempty"`
}

// String renders the combination for log lines.
func (c Combination) String() string {
	switch c.Kind {
	case KindInstitution:
		return fmt.Sprintf("topic %s at %s", openalex.IDCode(c.TopicID), openalex.IDCode(c.InstitutionID))
	case KindCity:
		return fmt.Sprintf("topic %s in %s, %s", openalex.IDCode(c.TopicID), c.City, c.CountryCode)
	default:
		return fmt.Sprintf("topic %s in %s", openalex.IDCode(c.TopicID), c.CountryCode)
	}
}

// QueryType maps the locality kind to the sample's query type.
func (c Combination) QueryType() types.QueryType {
	switch c.Kind {
	case KindInstitution:
		return types.QueryInstitutionFocused
	case KindCity:
		return types.QueryLocationBased
	default:
		return types.QueryDomainTopic
	}
}

// Source is the subset of the OpenAlex client the builder needs. The full
// client satisfies it; tests supply fakes.
type Source interface {
	ListWorks(ctx context.Context, filter openalex.WorksFilter, perPage int) ([]openalex.Work, error)
	GetInstitution(ctx context.Context, id string) (openalex.Institution, error)
}

// Builder constructs Samples from OpenAlex data.
type Builder struct {
	Source Source

	// Cache resolves institution ids to cities for city-scoped
	// combinations. Shared across concurrent builds.
	Cache *CityCache

	// Countries maps country codes to display names for query rendering.
	Countries map[string]string

	// StartYear restricts source works to publications after this year.
	StartYear int

	// PerQuery caps the works fetched per combination.
	PerQuery int
}

// Build constructs the Sample for one combination. It returns an error
// wrapping ErrInsufficientData when the combination yields no leads or no
// topic data; it never returns a partial Sample.
func (b *Builder) Build(ctx context.Context, combo Combination) (types.Sample, error) {
	filter := openalex.WorksFilter{
		PublicationYearAfter: b.StartYear,
		TopicID:              combo.TopicID,
	}
	if combo.Kind == KindInstitution {
		filter.InstitutionID = combo.InstitutionID
	} else {
		filter.CountryCode = combo.CountryCode
	}

	works, err := b.Source.ListWorks(ctx, filter, b.PerQuery)
	if err != nil {
		return types.Sample{}, fmt.Errorf("querying works for %s: %w", combo, err)
	}

	var (
		leads           []types.Lead
		topicName       string
		institutionName string
		provenance      types.OpenAlexProvenance
		haveProvenance  bool
		seen            = map[string]bool{}
	)

	for _, work := range works {
		for _, authorship := range work.Authorships {
			for _, inst := range authorship.Institutions {
				ok, err := b.matches(ctx, combo, inst)
				if err != nil {
					return types.Sample{}, fmt.Errorf("resolving institution for %s: %w", combo, err)
				}
				if !ok {
					continue
				}

				topic := work.PrimaryTopic
				topicName = topic.DisplayName
				if topic.Subfield.DisplayName != "" {
					topicName = fmt.Sprintf("%s (%s)", topic.DisplayName, topic.Subfield.DisplayName)
				}

				// Alternative names are only surfaced for
				// institution-level queries, where the agent must
				// recognize the one target institution.
				institutionName = inst.DisplayName
				if combo.Kind == KindInstitution && len(inst.DisplayNameAlternatives) > 0 {
					institutionName = fmt.Sprintf("%s (also known as %s)",
						inst.DisplayName, strings.Join(inst.DisplayNameAlternatives, ", "))
				}

				researcher := authorship.Author
				if researcher.ID == "" || seen[researcher.ID] {
					continue
				}
				seen[researcher.ID] = true

				leads = append(leads, types.Lead{
					Name:        researcher.DisplayName,
					Title:       placeholderTitle,
					Headline:    fmt.Sprintf("Researcher in %s", inst.DisplayName),
					Institution: inst.DisplayName,
					SourceURL:   researcher.ID,
				})

				provenance = types.OpenAlexProvenance{
					TopicID:              combo.TopicID,
					TopicDisplayName:     topicName,
					TopicKeywords:        topic.Keywords,
					TopicDomain:          topic.Domain.DisplayName,
					TopicField:           topic.Field.DisplayName,
					TopicSubfield:        topic.Subfield.DisplayName,
					InstitutionID:        inst.ID,
					InstitutionCountry:   inst.CountryCode,
					City:                 combo.City,
					TargetResearcherID:   researcher.ID,
					TargetResearcherName: researcher.DisplayName,
					WorkID:               work.ID,
				}
				haveProvenance = true
			}
		}
	}

	if len(leads) == 0 || topicName == "" || !haveProvenance {
		return types.Sample{}, fmt.Errorf(
			"%w: %s (leads=%d, topic=%q)", ErrInsufficientData, combo, len(leads), topicName)
	}

	params := types.ResearchParams{
		WhoQuery:   placeholderTitle,
		WhatQuery:  topicName,
		WhereQuery: b.whereClause(combo, provenance),
	}

	opts := query.Options{}
	if combo.Kind == KindInstitution {
		opts.Institution = institutionName
	}

	return types.Sample{
		QueryParams:     params,
		QueryString:     query.Build(params, opts),
		QueryType:       combo.QueryType(),
		ExpectedResults: types.LeadResults{Leads: leads},
		OpenAlex:        provenance,
	}, nil
}

// matches reports whether inst is the combination's target. City-scoped
// combinations resolve the institution's city through the shared cache.
func (b *Builder) matches(ctx context.Context, combo Combination, inst openalex.Institution) (bool, error) {
	switch combo.Kind {
	case KindInstitution:
		return inst.ID == combo.InstitutionID, nil
	case KindCountry:
		return inst.CountryCode == combo.CountryCode, nil
	case KindCity:
		if inst.CountryCode != combo.CountryCode {
			return false, nil
		}
		city, err := b.resolveCity(ctx, inst.ID)
		if err != nil {
			return false, err
		}
		return city == combo.City, nil
	default:
		return false, fmt.Errorf("unknown locality kind %q", combo.Kind)
	}
}

// resolveCity returns the institution's city, consulting the cache first.
// Concurrent first-time lookups for the same institution may both hit the
// API; both write the same value, so the duplicate work is harmless.
func (b *Builder) resolveCity(ctx context.Context, institutionID string) (string, error) {
	if city, ok := b.Cache.Get(institutionID); ok {
		return city, nil
	}

	inst, err := b.Source.GetInstitution(ctx, institutionID)
	if err != nil {
		return "", err
	}

	b.Cache.Put(institutionID, inst.Geo.City)
	return inst.Geo.City, nil
}

// whereClause renders the locality for the research query.
func (b *Builder) whereClause(combo Combination, prov types.OpenAlexProvenance) string {
	switch combo.Kind {
	case KindCity:
		return fmt.Sprintf("%s, %s", combo.City, b.countryName(combo.CountryCode))
	case KindCountry:
		return b.countryName(combo.CountryCode)
	default:
		return b.countryName(prov.InstitutionCountry)
	}
}

func (b *Builder) countryName(code string) string {
	if name, ok := b.Countries[code]; ok {
		return name
	}
	return code
}
