package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
)

// ClaudeClient is a CompletionClient bound to one Claude candidate.
type ClaudeClient struct {
	candidate   interfaces.Candidate
	client      anthropic.Client
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewClaudeClient creates a completion client for one candidate.
func NewClaudeClient(candidate interfaces.Candidate, cfg common.ClaudeConfig) *ClaudeClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &ClaudeClient{
		candidate:   candidate,
		client:      anthropic.NewClient(option.WithAPIKey(candidate.APIKey)),
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		timeout:     common.Duration(cfg.Timeout, 15*time.Second),
	}
}

// Complete sends one prompt and returns the raw model text.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.candidate.Model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude model %s", c.candidate.Model)
	}
	return response.String(), nil
}

// Candidate returns the candidate this client is bound to.
func (c *ClaudeClient) Candidate() interfaces.Candidate {
	return c.candidate
}
