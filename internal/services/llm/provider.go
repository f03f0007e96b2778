package llm

import (
	"fmt"

	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
)

// BuildCandidates expands the configured pools into an ordered
// candidate list: provider order first, then keys within a provider,
// then models within a key. Providers without keys contribute nothing.
func BuildCandidates(cfg common.LLMConfig) []interfaces.Candidate {
	var out []interfaces.Candidate
	for _, p := range cfg.ProviderOrder {
		switch interfaces.Provider(p) {
		case interfaces.ProviderGemini:
			out = append(out, expand(interfaces.ProviderGemini, cfg.Gemini.APIKeys, cfg.Gemini.Models)...)
		case interfaces.ProviderClaude:
			out = append(out, expand(interfaces.ProviderClaude, cfg.Claude.APIKeys, cfg.Claude.Models)...)
		}
	}
	return out
}

// CallerCandidates builds the priority candidates for a caller-supplied
// key: one per provider in configured order, using that provider's
// first model. The caller does not say which provider the key belongs
// to, so each is tried; a key for the wrong provider fails fast as an
// auth error and the rotation moves on.
func CallerCandidates(cfg common.LLMConfig, apiKey string) []interfaces.Candidate {
	if apiKey == "" {
		return nil
	}
	var out []interfaces.Candidate
	for _, p := range cfg.ProviderOrder {
		var models []string
		switch interfaces.Provider(p) {
		case interfaces.ProviderGemini:
			models = cfg.Gemini.Models
		case interfaces.ProviderClaude:
			models = cfg.Claude.Models
		}
		if len(models) == 0 {
			continue
		}
		out = append(out, interfaces.Candidate{
			Provider: interfaces.Provider(p),
			APIKey:   apiKey,
			Model:    models[0],
			Source:   interfaces.CandidateSourceCaller,
		})
	}
	return out
}

func expand(provider interfaces.Provider, keys, models []string) []interfaces.Candidate {
	var out []interfaces.Candidate
	for _, key := range keys {
		for _, model := range models {
			out = append(out, interfaces.Candidate{
				Provider: provider,
				APIKey:   key,
				Model:    model,
				Source:   interfaces.CandidateSourceConfig,
			})
		}
	}
	return out
}

// NewClient builds the provider client for a candidate.
func NewClient(candidate interfaces.Candidate, cfg common.LLMConfig) (interfaces.CompletionClient, error) {
	switch candidate.Provider {
	case interfaces.ProviderGemini:
		return NewGeminiClient(candidate, cfg.Gemini)
	case interfaces.ProviderClaude:
		return NewClaudeClient(candidate, cfg.Claude), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", candidate.Provider)
	}
}
