package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
)

const goodResponse = `[{"summary":"s1","insight":"i1"},{"summary":"s2","insight":"i2"}]`

var testItems = []models.FeedItem{
	{Title: "first", CleanDescription: "d1"},
	{Title: "second", CleanDescription: "d2"},
}

// scriptedClient returns canned responses in order, repeating the last.
type scriptedClient struct {
	candidate interfaces.Candidate
	texts     []string
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	idx := c.calls
	if idx >= len(c.texts) {
		idx = len(c.texts) - 1
	}
	c.calls++
	return c.texts[idx], c.errs[idx]
}

func (c *scriptedClient) Candidate() interfaces.Candidate { return c.candidate }

func testLLMConfig() common.LLMConfig {
	return common.LLMConfig{
		ProviderOrder: []string{"gemini", "claude"},
		Retries:       2,
		Backoff:       "1ms",
		MaxBackoff:    "5ms",
		RateLimit:     1000,
		Gemini: common.GeminiConfig{
			APIKeys: []string{"g-key"},
			Models:  []string{"gemini-2.0-flash"},
			Timeout: "5s",
		},
		Claude: common.ClaudeConfig{
			APIKeys:   []string{"c-key"},
			Models:    []string{"claude-haiku-3-5-20241022"},
			Timeout:   "5s",
			MaxTokens: 1024,
		},
	}
}

// newScriptedService wires a rotation service whose clients are looked
// up from a script keyed by provider/model/key.
func newScriptedService(t *testing.T, clients map[string]*scriptedClient) *Service {
	t.Helper()
	svc := NewService(testLLMConfig(), NewAuditLog(), nil, common.NewTestLogger())
	svc.newClient = func(c interfaces.Candidate) (interfaces.CompletionClient, error) {
		key := fmt.Sprintf("%s/%s/%s", c.Provider, c.Model, c.APIKey)
		client, ok := clients[key]
		if !ok {
			t.Fatalf("unexpected candidate %s", key)
		}
		client.candidate = c
		return client, nil
	}
	return svc
}

func TestAnalyzeFirstCandidateWins(t *testing.T) {
	clients := map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key": {texts: []string{goodResponse}, errs: []error{nil}},
	}
	svc := newScriptedService(t, clients)

	result, winner, err := svc.Analyze(context.Background(), testItems)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, interfaces.ProviderGemini, winner.Provider)
	assert.Equal(t, "gemini-2.0-flash", winner.Model)
	assert.Equal(t, interfaces.CandidateSourceConfig, winner.Source)
}

func TestAnalyzeFormatFailureAdvances(t *testing.T) {
	clients := map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key":          {texts: []string{"no json here"}, errs: []error{nil}},
		"claude/claude-haiku-3-5-20241022/c-key": {texts: []string{goodResponse}, errs: []error{nil}},
	}
	svc := newScriptedService(t, clients)

	result, winner, err := svc.Analyze(context.Background(), testItems)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, interfaces.ProviderClaude, winner.Provider)

	// Malformed output is not retried against the same candidate.
	assert.Equal(t, 1, clients["gemini/gemini-2.0-flash/g-key"].calls)
}

func TestAnalyzeRateLimitRetriedInPlace(t *testing.T) {
	rateLimit := errors.New("Error 429: quota exceeded")
	clients := map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key": {
			texts: []string{"", "", goodResponse},
			errs:  []error{rateLimit, rateLimit, nil},
		},
	}
	svc := newScriptedService(t, clients)

	result, winner, err := svc.Analyze(context.Background(), testItems)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, interfaces.ProviderGemini, winner.Provider)
	assert.Equal(t, 3, clients["gemini/gemini-2.0-flash/g-key"].calls)
}

func TestAnalyzeRateLimitExhaustsThenAdvances(t *testing.T) {
	rateLimit := errors.New("Error 429: quota exceeded")
	gemini := &scriptedClient{texts: []string{""}, errs: []error{rateLimit}}
	claude := &scriptedClient{texts: []string{goodResponse}, errs: []error{nil}}
	svc := newScriptedService(t, map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key":          gemini,
		"claude/claude-haiku-3-5-20241022/c-key": claude,
	})

	_, winner, err := svc.Analyze(context.Background(), testItems)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProviderClaude, winner.Provider)
	// Initial attempt plus two in-place retries.
	assert.Equal(t, 3, gemini.calls)
}

func TestAnalyzeAllExhausted(t *testing.T) {
	boom := errors.New("500 internal error")
	svc := newScriptedService(t, map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key":          {texts: []string{""}, errs: []error{boom}},
		"claude/claude-haiku-3-5-20241022/c-key": {texts: []string{""}, errs: []error{boom}},
	})

	_, _, err := svc.Analyze(context.Background(), testItems)
	assert.ErrorIs(t, err, interfaces.ErrAllCandidatesExhausted)
}

func TestAnalyzeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gemini := &scriptedClient{texts: []string{""}, errs: []error{context.Canceled}}
	svc := newScriptedService(t, map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/g-key": gemini,
	})
	svc.newClient = func(c interfaces.Candidate) (interfaces.CompletionClient, error) {
		cancel()
		gemini.candidate = c
		return gemini, nil
	}

	_, _, err := svc.Analyze(ctx, testItems)
	assert.ErrorIs(t, err, context.Canceled)
	// Cancellation aborts the rotation; claude is never tried.
}

func TestAnalyzeCallerCandidateFirst(t *testing.T) {
	cfg := testLLMConfig()
	callerCands := CallerCandidates(cfg, "caller-key")
	require.Len(t, callerCands, 2)

	clients := map[string]*scriptedClient{
		"gemini/gemini-2.0-flash/caller-key": {texts: []string{goodResponse}, errs: []error{nil}},
	}
	svc := newScriptedService(t, clients)

	result, winner, err := svc.Analyze(context.Background(), testItems, callerCands...)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, interfaces.CandidateSourceCaller, winner.Source)
	assert.Equal(t, "caller-key", winner.APIKey)
}

func TestAnalyzeNoCandidates(t *testing.T) {
	svc := NewService(common.LLMConfig{ProviderOrder: []string{"gemini"}}, NewAuditLog(), nil, common.NewTestLogger())
	_, _, err := svc.Analyze(context.Background(), testItems)
	assert.ErrorIs(t, err, interfaces.ErrAllCandidatesExhausted)
}

func TestAuditRecordsOutcomes(t *testing.T) {
	audit := NewAuditLog()
	svc := NewService(testLLMConfig(), audit, nil, common.NewTestLogger())
	svc.newClient = func(c interfaces.Candidate) (interfaces.CompletionClient, error) {
		return &scriptedClient{candidate: c, texts: []string{goodResponse}, errs: []error{nil}}, nil
	}

	_, _, err := svc.Analyze(context.Background(), testItems)
	require.NoError(t, err)

	recent := audit.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, OutcomeSuccess, recent[0].Outcome)
	assert.Empty(t, recent[0].Detail)
}
