// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/lead-engine/internal/tavily"
)

// Web tool names as offered to the model.
const (
	toolBrowseWeb  = "browse_web"
	toolWebsiteMap = "get_website_map"
	toolWebContent = "get_website_content"
)

// webToolDefs returns the tool definitions for the web research tools.
func webToolDefs() []ToolDef {
	return []ToolDef{
		{
			Name:        toolBrowseWeb,
			Description: "Search the web for pages matching a query. Returns titles, URLs, and content snippets.",
			InputSchema: objectSchema(map[string]string{
				"query": "The web search query.",
			}, "query"),
		},
		{
			Name:        toolWebsiteMap,
			Description: "List the URLs reachable from a website, to discover staff directories and profile pages.",
			InputSchema: objectSchema(map[string]string{
				"url": "The website URL to map.",
			}, "url"),
		},
		{
			Name:        toolWebContent,
			Description: "Fetch the readable content of a web page.",
			InputSchema: objectSchema(map[string]string{
				"url": "The page URL to fetch.",
			}, "url"),
		},
	}
}

// objectSchema builds a JSON schema for an object of string properties.
func objectSchema(props map[string]string, required ...string) json.RawMessage {
	type prop struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	schema := struct {
		Type       string          `json:"type"`
		Properties map[string]prop `json:"properties"`
		Required   []string        `json:"required"`
	}{
		Type:       "object",
		Properties: map[string]prop{},
		Required:   required,
	}
	for name, desc := range props {
		schema.Properties[name] = prop{Type: "string", Description: desc}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return data
}

// Searcher is the subset of the Tavily client the web tools need. The full
// client satisfies it; tests supply fakes.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (tavily.SearchResponse, error)
	Map(ctx context.Context, siteURL string) (tavily.MapResponse, error)
	Extract(ctx context.Context, urls ...string) (tavily.ExtractResponse, error)
}

// WebTools executes the model's web tool calls against the Tavily API.
// Tool failures are reported to the model as plain-text messages rather
// than errors, so the agent can adjust its approach and keep working; the
// underlying error is logged.
type WebTools struct {
	Searcher Searcher

	// MaxResults is the number of search hits returned per browse_web
	// call.
	MaxResults int

	// Log receives a line per failed tool call.
	Log io.Writer
}

// Run executes one tool call and returns the text handed back to the model.
func (t *WebTools) Run(ctx context.Context, name string, input json.RawMessage) string {
	var args struct {
		Query string `json:"query"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return fmt.Sprintf("Invalid tool input: %v", err)
	}

	switch name {
	case toolBrowseWeb:
		resp, err := t.Searcher.Search(ctx, args.Query, t.MaxResults)
		if err != nil {
			return t.failure(name, err, "Web search failed; try a different query.")
		}
		return formatSearch(resp)
	case toolWebsiteMap:
		resp, err := t.Searcher.Map(ctx, args.URL)
		if err != nil {
			return t.failure(name, err, "Could not map that website; try fetching a page directly.")
		}
		return formatMap(resp)
	case toolWebContent:
		resp, err := t.Searcher.Extract(ctx, args.URL)
		if err != nil {
			return t.failure(name, err, "Could not fetch that page; try a different URL.")
		}
		return formatExtract(resp)
	default:
		return fmt.Sprintf("Unknown tool %q.", name)
	}
}

func (t *WebTools) failure(name string, err error, msg string) string {
	if t.Log != nil {
		fmt.Fprintf(t.Log, "tool %s failed: %v\n", name, err)
	}
	return msg
}

func formatSearch(resp tavily.SearchResponse) string {
	if len(resp.Results) == 0 {
		return "No search results found."
	}
	var b strings.Builder
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return b.String()
}

func formatMap(resp tavily.MapResponse) string {
	if len(resp.Results) == 0 {
		return "No URLs found on that website."
	}
	return strings.Join(resp.Results, "\n")
}

func formatExtract(resp tavily.ExtractResponse) string {
	if len(resp.Results) == 0 {
		return "No content could be extracted from that URL."
	}
	var b strings.Builder
	for _, page := range resp.Results {
		fmt.Fprintf(&b, "Content of %s:\n%s\n\n", page.URL, page.RawContent)
	}
	return b.String()
}
