// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tavily is a client for the Tavily web search, site map, and
// content extraction API. The agent runtime exposes these three operations
// to the model as tools.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/lead-engine/internal/httputil"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// apiBase is the Tavily API root. Declared as a var so tests can substitute
// an httptest server.
var apiBase = "https://api.tavily.com"

// Client calls the Tavily API.
type Client struct {
	HTTP   *http.Client
	APIKey string

	// Config supplies the User-Agent header.
	Config types.HTTPConfig

	// MaxRetries bounds rate-limit retries per request.
	MaxRetries int
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SearchResponse holds the hits for one search query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// MapResponse lists the URLs discovered when mapping a site.
type MapResponse struct {
	BaseURL string   `json:"base_url"`
	Results []string `json:"results"`
}

// ExtractedPage is the raw content pulled from one URL.
type ExtractedPage struct {
	URL        string `json:"url"`
	RawContent string `json:"raw_content"`
}

// ExtractResponse holds extraction results; URLs that could not be fetched
// appear in FailedResults.
type ExtractResponse struct {
	Results       []ExtractedPage `json:"results"`
	FailedResults []string        `json:"failed_results,omitempty"`
}

// Search runs a web search and returns up to maxResults hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (SearchResponse, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	body := map[string]any{
		"query":       query,
		"max_results": maxResults,
	}

	var out SearchResponse
	if err := c.post(ctx, "/search", body, &out); err != nil {
		return SearchResponse{}, fmt.Errorf("tavily search: %w", err)
	}
	return out, nil
}

// Map crawls a site and returns the URLs it links to.
func (c *Client) Map(ctx context.Context, siteURL string) (MapResponse, error) {
	var out MapResponse
	if err := c.post(ctx, "/map", map[string]any{"url": siteURL}, &out); err != nil {
		return MapResponse{}, fmt.Errorf("tavily map: %w", err)
	}
	return out, nil
}

// Extract fetches the readable content of each URL.
func (c *Client) Extract(ctx context.Context, urls ...string) (ExtractResponse, error) {
	var out ExtractResponse
	if err := c.post(ctx, "/extract", map[string]any{"urls": urls}, &out); err != nil {
		return ExtractResponse{}, fmt.Errorf("tavily extract: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("User-Agent", c.Config.UserAgent)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned HTTP %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
