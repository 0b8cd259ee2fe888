// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent runs lead-research agents against the Claude Messages API:
// a single-agent pattern where one agent drives the web tools directly, and
// a multi-agent pattern where an orchestrator delegates to researcher
// sub-agents through a tool call.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/lead-engine/internal/httputil"
)

// apiURL is the Claude Messages API endpoint. Package-level var for test
// substitution.
var apiURL = "https://api.anthropic.com/v1/messages"

const maxResponseTokens = 8192

// Client calls the Claude Messages API.
type Client struct {
	APIKey     string
	HTTP       *http.Client
	MaxRetries int

	// URL overrides the Messages API endpoint when set.
	URL string
}

// Message is one turn in a Messages API conversation.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one block of message content. Type selects which fields
// are meaningful: "text" uses Text, "tool_use" uses ID/Name/Input, and
// "tool_result" uses ToolUseID/Content.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ToolResultBlock returns a tool_result block answering a tool_use block.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: "tool_result", ToolUseID: toolUseID, Content: content}
}

// ToolDef describes one tool offered to the model.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Request is one Messages API call.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Tools     []ToolDef `json:"tools,omitempty"`
}

// Response is the Messages API reply.
type Response struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolUses returns the tool_use blocks in the response.
func (r Response) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range r.Content {
		if block.Type == "tool_use" {
			uses = append(uses, block)
		}
	}
	return uses
}

// Text returns the concatenated text blocks in the response.
func (r Response) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// Complete sends one Messages API request. Rate-limited responses are
// retried with backoff before failing.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = maxResponseTokens
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.URL
	if endpoint == "" {
		endpoint = apiURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return Response{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding Claude response: %w", err)
	}
	return out, nil
}

// ParseJSONOutput extracts a JSON object from a model's final text, which
// may be wrapped in a Markdown code fence, and unmarshals it into out.
func ParseJSONOutput(text string, out any) error {
	start := bytes.IndexByte([]byte(text), '{')
	end := bytes.LastIndexByte([]byte(text), '}')
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("parsing model output: %w", err)
	}
	return nil
}
