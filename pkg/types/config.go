// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lead-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AgentConfig holds settings for the research agent runtime.
type AgentConfig struct {
	AIConfig `yaml:",inline"`

	// ResearcherModel is the model used by delegated researcher agents in
	// the multi-agent pattern. Defaults to Model when empty.
	ResearcherModel string `json:"researcher_model,omitempty" yaml:"researcher_model,omitempty"`

	// TavilyAPIKey authenticates the web search/map/extract tools.
	TavilyAPIKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty"`

	// SearchResults is the number of web search results requested per
	// browse_web call (default 5).
	SearchResults int `json:"search_results" yaml:"search_results"`

	// MaxToolRounds caps the number of tool-use rounds in one agent run
	// (default 30).
	MaxToolRounds int `json:"max_tool_rounds" yaml:"max_tool_rounds"`

	// HistoryTokenBudget is the approximate input-token count above which
	// older messages are dropped from the conversation (default 1,000,000).
	HistoryTokenBudget int `json:"history_token_budget" yaml:"history_token_budget"`
}

// GenerationConfig holds the immutable run parameters for the synthetic
// corpus generator. The three locality ratios must sum to 1.0; the gather
// phase rejects a config where they do not.
type GenerationConfig struct {
	// TargetQueries is the number of (topic, locality) combinations to
	// gather before generation starts (default 1000).
	TargetQueries int `json:"target_queries" yaml:"target_queries"`

	// BatchSize is the number of combinations processed between checkpoints
	// (default 250).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxResultsPerQuery caps the works fetched per combination (default 25).
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query"`

	// CheckpointDir is the directory holding checkpoint and progress files
	// (default "checkpoints").
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir"`

	// OutputFile is the final aggregated corpus file
	// (default "synthetic_queries.json").
	OutputFile string `json:"output_file" yaml:"output_file"`

	// CountryRatio is the fraction of target queries scoped to a whole
	// country (default 0.1).
	CountryRatio float64 `json:"country_ratio" yaml:"country_ratio"`

	// CityRatio is the fraction of target queries scoped to a city
	// (default 0.4).
	CityRatio float64 `json:"city_ratio" yaml:"city_ratio"`

	// InstitutionRatio is the fraction of target queries scoped to one
	// institution (default 0.5).
	InstitutionRatio float64 `json:"institution_ratio" yaml:"institution_ratio"`

	// ParallelBatchSize is the number of sample builders running
	// concurrently within one batch (default 3).
	ParallelBatchSize int `json:"parallel_batch_size" yaml:"parallel_batch_size"`

	// StartYear restricts source works to publications after this year
	// (default 2023).
	StartYear int `json:"start_year" yaml:"start_year"`
}

// EvalConfig holds settings for the evaluation harness.
type EvalConfig struct {
	AIConfig `yaml:",inline"`

	// GraderModel is the model used by the LLM correctness grader.
	// Defaults to Model when empty.
	GraderModel string `json:"grader_model,omitempty" yaml:"grader_model,omitempty"`

	// Threshold is the grader score at or above which a case passes
	// (default 0.5).
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// CorpusConfig holds settings for the sample corpus store.
type CorpusConfig struct {
	// Dir is the base directory for the corpus database (contains index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
