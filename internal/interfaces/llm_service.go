package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/nuntium/internal/models"
)

// ErrAllCandidatesExhausted indicates every analysis candidate failed.
var ErrAllCandidatesExhausted = errors.New("all analysis candidates exhausted")

// Provider identifies a language model provider.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
)

// Candidate is one (provider, key, model) combination the rotation may
// try. Source records where the key came from, which decides whether
// the resulting report may be shared.
type Candidate struct {
	Provider Provider
	APIKey   string
	Model    string
	Source   CandidateSource
}

// CandidateSource distinguishes operator-configured keys from keys
// supplied by a caller on a single request.
type CandidateSource string

const (
	CandidateSourceConfig CandidateSource = "config"
	CandidateSourceCaller CandidateSource = "caller"
)

// CompletionClient is a single provider client bound to one candidate.
// Implementations wrap the provider SDKs; the rotation layer owns retry
// and failover policy.
type CompletionClient interface {
	// Complete sends one prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Candidate returns the candidate this client is bound to.
	Candidate() Candidate
}

// AnalysisService turns a batch of feed items into summaries and
// insights, rotating through candidates until one succeeds.
type AnalysisService interface {
	// Analyze prompts candidates in order until one returns a result
	// with exactly one entry per item. It returns the result and the
	// winning candidate, ErrAllCandidatesExhausted when every candidate
	// failed, or ctx.Err() when the context ended first.
	//
	// Extra candidates, when provided, are tried before the configured
	// pool. They carry caller-supplied keys.
	Analyze(ctx context.Context, items []models.FeedItem, extra ...Candidate) (models.AnalysisResult, Candidate, error)
}
