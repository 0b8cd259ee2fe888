// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lead-engine/internal/tavily"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// scriptedServer returns one canned response per Messages API call, in
// order, and records every request body.
type scriptedServer struct {
	responses []Response
	requests  []Request
	headers   []http.Header
}

func withMessagesServer(t *testing.T, s *scriptedServer) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		s.requests = append(s.requests, req)
		s.headers = append(s.headers, r.Header.Clone())

		if len(s.responses) == 0 {
			t.Error("unexpected extra Messages API call")
			http.Error(w, "no scripted response", http.StatusInternalServerError)
			return
		}
		resp := s.responses[0]
		s.responses = s.responses[1:]
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	orig := apiURL
	apiURL = srv.URL
	t.Cleanup(func() { apiURL = orig })
}

func endTurn(text string) Response {
	return Response{
		Content:    []ContentBlock{TextBlock(text)},
		StopReason: "end_turn",
	}
}

func toolUse(id, name string, input string) Response {
	return Response{
		Content: []ContentBlock{{
			Type:  "tool_use",
			ID:    id,
			Name:  name,
			Input: json.RawMessage(input),
		}},
		StopReason: "tool_use",
	}
}

// fakeSearcher serves canned Tavily responses.
type fakeSearcher struct {
	searchErr  error
	lastQuery  string
	maxResults int
}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) (tavily.SearchResponse, error) {
	f.lastQuery = query
	f.maxResults = maxResults
	if f.searchErr != nil {
		return tavily.SearchResponse{}, f.searchErr
	}
	return tavily.SearchResponse{Results: []tavily.SearchResult{{
		Title:   "AFNS Faculty",
		URL:     "https://ualberta.ca/afns",
		Content: "Faculty directory",
	}}}, nil
}

func (f *fakeSearcher) Map(_ context.Context, _ string) (tavily.MapResponse, error) {
	return tavily.MapResponse{Results: []string{"https://ualberta.ca/afns/people"}}, nil
}

func (f *fakeSearcher) Extract(_ context.Context, _ ...string) (tavily.ExtractResponse, error) {
	return tavily.ExtractResponse{Results: []tavily.ExtractedPage{{
		URL:        "https://ualberta.ca/afns/people",
		RawContent: "Carla Prado, Professor. carla.prado@ualberta.ca",
	}}}, nil
}

func testAgentConfig() types.AgentConfig {
	return types.AgentConfig{
		AIConfig: types.AIConfig{
			Model:  "claude-sonnet-4-5-20250929",
			APIKey: "test-key",
		},
		SearchResults: 3,
		MaxToolRounds: 5,
	}
}

func TestRunSingle(t *testing.T) {
	leadsJSON := `{"leads": [{"name": "Carla Prado", "email": "carla.prado@ualberta.ca", "institution": "University of Alberta"}]}`
	srv := &scriptedServer{responses: []Response{
		toolUse("tu_1", toolBrowseWeb, `{"query": "nutrition researchers Edmonton"}`),
		endTurn(leadsJSON),
	}}
	withMessagesServer(t, srv)

	searcher := &fakeSearcher{}
	var buf bytes.Buffer
	runner := NewRunner(testAgentConfig(), searcher, &buf)

	results, err := runner.RunSingle(context.Background(), "Find nutrition researchers in Edmonton")
	require.NoError(t, err)

	require.Len(t, results.Leads, 1)
	assert.Equal(t, "Carla Prado", results.Leads[0].Name)
	assert.Equal(t, "carla.prado@ualberta.ca", results.Leads[0].Email)

	// Both calls carry auth and version headers.
	require.Len(t, srv.headers, 2)
	assert.Equal(t, "test-key", srv.headers[0].Get("x-api-key"))
	assert.Equal(t, "2023-06-01", srv.headers[0].Get("anthropic-version"))

	// First call: task plus the three web tools.
	first := srv.requests[0]
	assert.Equal(t, "claude-sonnet-4-5-20250929", first.Model)
	assert.Contains(t, first.System, "lead research agent")
	require.Len(t, first.Tools, 3)
	require.Len(t, first.Messages, 1)

	// Second call: assistant tool_use plus our tool_result.
	second := srv.requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "assistant", second.Messages[1].Role)
	result := second.Messages[2].Content[0]
	assert.Equal(t, "tool_result", result.Type)
	assert.Equal(t, "tu_1", result.ToolUseID)
	assert.Contains(t, result.Content, "AFNS Faculty")

	// The tool call used the configured search width.
	assert.Equal(t, "nutrition researchers Edmonton", searcher.lastQuery)
	assert.Equal(t, 3, searcher.maxResults)
}

func TestRunSingleParsesFencedJSON(t *testing.T) {
	srv := &scriptedServer{responses: []Response{
		endTurn("Here are the results:\n```json\n{\"leads\": []}\n```"),
	}}
	withMessagesServer(t, srv)

	runner := NewRunner(testAgentConfig(), &fakeSearcher{}, &bytes.Buffer{})
	results, err := runner.RunSingle(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, results.Leads)
}

func TestRunSingleRejectsNonJSONOutput(t *testing.T) {
	srv := &scriptedServer{responses: []Response{
		endTurn("I could not complete the research."),
	}}
	withMessagesServer(t, srv)

	runner := NewRunner(testAgentConfig(), &fakeSearcher{}, &bytes.Buffer{})
	_, err := runner.RunSingle(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestToolLoopRoundCap(t *testing.T) {
	srv := &scriptedServer{responses: []Response{
		toolUse("tu_1", toolBrowseWeb, `{"query": "a"}`),
		toolUse("tu_2", toolBrowseWeb, `{"query": "b"}`),
	}}
	withMessagesServer(t, srv)

	cfg := testAgentConfig()
	cfg.MaxToolRounds = 2
	runner := NewRunner(cfg, &fakeSearcher{}, &bytes.Buffer{})

	_, err := runner.RunSingle(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 tool rounds")
}

func TestRunMulti(t *testing.T) {
	researcherJSON := `{"task": "UAlberta AFNS faculty", "search_strategy": "directory crawl", "leads": {"leads": [{"name": "Diana Mager"}]}}`
	finalJSON := `{"leads": [{"name": "Diana Mager", "institution": "University of Alberta"}]}`

	// Call order: orchestrator, delegated researcher, orchestrator again.
	srv := &scriptedServer{responses: []Response{
		toolUse("tu_1", toolRunResearcher, `{"task": "UAlberta AFNS faculty"}`),
		endTurn(researcherJSON),
		endTurn(finalJSON),
	}}
	withMessagesServer(t, srv)

	cfg := testAgentConfig()
	cfg.ResearcherModel = "claude-haiku-4-5-20251001"
	var buf bytes.Buffer
	runner := NewRunner(cfg, &fakeSearcher{}, &buf)

	results, err := runner.RunMulti(context.Background(), "Find nutrition researchers at the University of Alberta")
	require.NoError(t, err)
	require.Len(t, results.Leads, 1)
	assert.Equal(t, "Diana Mager", results.Leads[0].Name)

	require.Len(t, srv.requests, 3)

	// Orchestrator only sees the delegation tool; the researcher gets the
	// web tools and its own model.
	orch := srv.requests[0]
	require.Len(t, orch.Tools, 1)
	assert.Equal(t, toolRunResearcher, orch.Tools[0].Name)
	assert.Equal(t, "claude-sonnet-4-5-20250929", orch.Model)

	res := srv.requests[1]
	assert.Equal(t, "claude-haiku-4-5-20251001", res.Model)
	require.Len(t, res.Tools, 3)
	assert.Contains(t, res.System, "specialized research agent")
	assert.Equal(t, "UAlberta AFNS faculty", res.Messages[0].Content[0].Text)

	// The researcher's structured findings flow back as the tool result.
	final := srv.requests[2]
	result := final.Messages[2].Content[0]
	assert.Equal(t, "tool_result", result.Type)
	assert.Contains(t, result.Content, "Diana Mager")
}

func TestWebToolsFailureBecomesMessage(t *testing.T) {
	var buf bytes.Buffer
	tools := &WebTools{
		Searcher:   &fakeSearcher{searchErr: fmt.Errorf("tavily: 502")},
		MaxResults: 5,
		Log:        &buf,
	}

	out := tools.Run(context.Background(), toolBrowseWeb, json.RawMessage(`{"query": "q"}`))
	assert.Equal(t, "Web search failed; try a different query.", out)
	assert.Contains(t, buf.String(), "tool browse_web failed: tavily: 502")
}

func TestWebToolsUnknownTool(t *testing.T) {
	tools := &WebTools{Searcher: &fakeSearcher{}}
	out := tools.Run(context.Background(), "delete_database", json.RawMessage(`{}`))
	assert.Contains(t, out, `Unknown tool "delete_database"`)
}

func TestWebToolsFormatting(t *testing.T) {
	tools := &WebTools{Searcher: &fakeSearcher{}, MaxResults: 5}

	search := tools.Run(context.Background(), toolBrowseWeb, json.RawMessage(`{"query": "q"}`))
	assert.Contains(t, search, "1. AFNS Faculty")
	assert.Contains(t, search, "https://ualberta.ca/afns")

	siteMap := tools.Run(context.Background(), toolWebsiteMap, json.RawMessage(`{"url": "https://ualberta.ca"}`))
	assert.Equal(t, "https://ualberta.ca/afns/people", siteMap)

	content := tools.Run(context.Background(), toolWebContent, json.RawMessage(`{"url": "https://ualberta.ca/afns/people"}`))
	assert.Contains(t, content, "Carla Prado, Professor")
}

func TestTrimHistory(t *testing.T) {
	big := strings.Repeat("x", 4000) // ~1000 estimated tokens per message
	messages := []Message{
		{Role: "user", Content: []ContentBlock{TextBlock("task")}},
		{Role: "assistant", Content: []ContentBlock{TextBlock(big)}},
		{Role: "user", Content: []ContentBlock{TextBlock(big)}},
		{Role: "assistant", Content: []ContentBlock{TextBlock(big)}},
		{Role: "user", Content: []ContentBlock{TextBlock(big)}},
	}

	trimmed := trimHistory(messages, 2500)
	require.Len(t, trimmed, 3)
	// The task survives; the oldest exchange is dropped whole.
	assert.Equal(t, "task", trimmed[0].Content[0].Text)
	assert.Equal(t, "assistant", trimmed[1].Role)
	assert.Equal(t, "user", trimmed[2].Role)

	// Under budget: untouched.
	assert.Len(t, trimHistory(messages, 1_000_000), 5)
}
