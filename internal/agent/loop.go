// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

const (
	defaultMaxToolRounds = 30
	defaultTokenBudget   = 1_000_000
)

// toolLoop drives one agent conversation: send the task, execute requested
// tools, feed results back, and return the model's final text.
type toolLoop struct {
	Client *Client
	Model  string
	System string
	Tools  []ToolDef

	// Run executes one tool call and returns the text for its
	// tool_result block.
	Run func(ctx context.Context, name string, input json.RawMessage) string

	// MaxRounds caps the number of tool-use rounds.
	MaxRounds int

	// TokenBudget bounds the conversation size; older tool exchanges are
	// dropped once the estimated input tokens exceed it.
	TokenBudget int

	// Log receives a line per tool call.
	Log io.Writer
}

func (l *toolLoop) run(ctx context.Context, task string) (string, error) {
	maxRounds := l.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	budget := l.TokenBudget
	if budget <= 0 {
		budget = defaultTokenBudget
	}

	messages := []Message{{
		Role:    "user",
		Content: []ContentBlock{TextBlock(task)},
	}}

	for round := 0; round < maxRounds; round++ {
		messages = trimHistory(messages, budget)

		resp, err := l.Client.Complete(ctx, Request{
			Model:    l.Model,
			System:   l.System,
			Messages: messages,
			Tools:    l.Tools,
		})
		if err != nil {
			return "", err
		}

		uses := resp.ToolUses()
		if resp.StopReason != "tool_use" || len(uses) == 0 {
			return resp.Text(), nil
		}

		messages = append(messages, Message{Role: "assistant", Content: resp.Content})

		results := make([]ContentBlock, 0, len(uses))
		for _, use := range uses {
			if l.Log != nil {
				fmt.Fprintf(l.Log, "tool call: %s\n", use.Name)
			}
			results = append(results, ToolResultBlock(use.ID, l.Run(ctx, use.Name, use.Input)))
		}
		messages = append(messages, Message{Role: "user", Content: results})
	}

	return "", fmt.Errorf("agent exceeded %d tool rounds", maxRounds)
}

// trimHistory drops the oldest tool exchanges until the estimated size of
// the conversation fits the budget. The first message carries the task and
// is always kept; exchanges are dropped as assistant/user pairs so every
// tool_use block keeps its tool_result.
func trimHistory(messages []Message, tokenBudget int) []Message {
	for len(messages) > 3 && estimateTokens(messages) > tokenBudget {
		trimmed := make([]Message, 0, len(messages)-2)
		trimmed = append(trimmed, messages[0])
		trimmed = append(trimmed, messages[3:]...)
		messages = trimmed
	}
	return messages
}

// estimateTokens approximates a conversation's input tokens from its JSON
// size. A rough chars/4 heuristic is enough for a trim threshold.
func estimateTokens(messages []Message) int {
	size := 0
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		size += len(data)
	}
	return size / 4
}
