package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiClient is a CompletionClient bound to one Gemini candidate.
type GeminiClient struct {
	candidate   interfaces.Candidate
	client      *genai.Client
	temperature float32
	timeout     time.Duration
}

// NewGeminiClient creates a completion client for one candidate.
func NewGeminiClient(candidate interfaces.Candidate, cfg common.GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  candidate.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiClient{
		candidate:   candidate,
		client:      client,
		temperature: float32(cfg.Temperature),
		timeout:     common.Duration(cfg.Timeout, 15*time.Second),
	}, nil
}

// Complete sends one prompt and returns the raw model text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.candidate.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini model %s", c.candidate.Model)
	}
	return response.String(), nil
}

// Candidate returns the candidate this client is bound to.
func (c *GeminiClient) Candidate() interfaces.Candidate {
	return c.candidate
}
