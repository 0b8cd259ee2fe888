// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QueryType classifies a synthetic evaluation query by the scope of its
// locality.
type QueryType string

const (
	// QueryDomainTopic targets a topic across a whole country.
	QueryDomainTopic QueryType = "domain_topic"

	// QueryInstitutionFocused targets a topic at one institution.
	QueryInstitutionFocused QueryType = "institution_focused"

	// QueryIndividualResearcher targets a single named researcher.
	QueryIndividualResearcher QueryType = "individual_researcher"

	// QueryLocationBased targets a topic within one city.
	QueryLocationBased QueryType = "location_based"
)

// OpenAlexProvenance records where a synthetic sample's expected leads came
// from in the OpenAlex graph. All fields are optional; the sample builder
// fills what the source data provides.
type OpenAlexProvenance struct {
	TopicID              string   `json:"topic_id,omitempty" yaml:"topic_id,omitempty"`
	TopicDisplayName     string   `json:"topic_display_name,omitempty" yaml:"topic_display_name,omitempty"`
	TopicKeywords        []string `json:"topic_keywords,omitempty" yaml:"topic_keywords,omitempty"`
	TopicDomain          string   `json:"topic_domain,omitempty" yaml:"topic_domain,omitempty"`
	TopicField           string   `json:"topic_field,omitempty" yaml:"topic_field,omitempty"`
	TopicSubfield        string   `json:"topic_subfield,omitempty" yaml:"topic_subfield,omitempty"`
	InstitutionID        string   `json:"institution_id,omitempty" yaml:"institution_id,omitempty"`
	InstitutionCountry   string   `json:"institution_country,omitempty" yaml:"institution_country,omitempty"`
	City                 string   `json:"city,omitempty" yaml:"city,omitempty"`
	TargetResearcherID   string   `json:"target_researcher_id,omitempty" yaml:"target_researcher_id,omitempty"`
	TargetResearcherName string   `json:"target_researcher_name,omitempty" yaml:"target_researcher_name,omitempty"`
	WorkID               string   `json:"work_id,omitempty" yaml:"work_id,omitempty"`
}

// Sample is one synthetic evaluation fixture: a rendered query, its
// structured parameters, and the expected lead set with provenance.
// A Sample is only valid when ExpectedResults is non-empty and the
// provenance carries a topic name; builders return an error instead of
// producing a partial Sample.
type Sample struct {
	QueryParams     ResearchParams     `json:"query_params" yaml:"query_params"`
	QueryString     string             `json:"query_string" yaml:"query_string"`
	QueryType       QueryType          `json:"query_type" yaml:"query_type"`
	ExpectedResults LeadResults        `json:"expected_results" yaml:"expected_results"`
	OpenAlex        OpenAlexProvenance `json:"openalex_results" yaml:"openalex_results"`
}

// EvalCase is a human-verified evaluation fixture: a query and the leads a
// human researcher confirmed should be found.
type EvalCase struct {
	QueryParams     ResearchParams `json:"query_params" yaml:"query_params"`
	ExpectedResults LeadResults    `json:"expected_results" yaml:"expected_results"`
}
