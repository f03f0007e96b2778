package llm

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
	"golang.org/x/time/rate"
)

// Service implements AnalysisService by rotating through provider
// candidates. Policy lives here; the provider clients only move bytes.
type Service struct {
	config  common.LLMConfig
	retry   *RetryConfig
	limiter *rate.Limiter
	audit   *AuditLog
	events  interfaces.EventService
	logger  arbor.ILogger

	// newClient is swappable for tests.
	newClient func(interfaces.Candidate) (interfaces.CompletionClient, error)
}

// NewService creates the candidate rotation service.
func NewService(config common.LLMConfig, audit *AuditLog, events interfaces.EventService, logger arbor.ILogger) *Service {
	rps := config.RateLimit
	if rps <= 0 {
		rps = 1
	}

	return &Service{
		config: config,
		retry: &RetryConfig{
			MaxRetries:        config.Retries,
			InitialBackoff:    common.Duration(config.Backoff, DefaultInitialBackoff),
			MaxBackoff:        common.Duration(config.MaxBackoff, DefaultMaxBackoff),
			BackoffMultiplier: DefaultBackoffMultiplier,
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		audit:     audit,
		events:    events,
		logger:    logger,
		newClient: func(c interfaces.Candidate) (interfaces.CompletionClient, error) { return NewClient(c, config) },
	}
}

// Analyze tries candidates in order until one returns a well-shaped
// result. Rate limits are retried in place before the rotation
// advances; format failures advance immediately since the same model
// tends to repeat them. Context cancellation aborts the whole rotation.
func (s *Service) Analyze(ctx context.Context, items []models.FeedItem, extra ...interfaces.Candidate) (models.AnalysisResult, interfaces.Candidate, error) {
	var none interfaces.Candidate
	if len(items) == 0 {
		return nil, none, interfaces.ErrAllCandidatesExhausted
	}

	candidates := append(append([]interfaces.Candidate{}, extra...), BuildCandidates(s.config)...)
	if len(candidates) == 0 {
		s.logger.Warn().Msg("No analysis candidates configured")
		return nil, none, interfaces.ErrAllCandidatesExhausted
	}

	prompt := BuildAnalysisPrompt(items)

	for _, candidate := range candidates {
		result, err := s.tryCandidate(ctx, candidate, prompt, len(items))
		if err == nil {
			return result, candidate, nil
		}
		if ctx.Err() != nil {
			return nil, none, ctx.Err()
		}
	}

	return nil, none, interfaces.ErrAllCandidatesExhausted
}

// tryCandidate runs the per-candidate attempt loop: up to MaxRetries
// in-place retries for rate limits, immediate failure otherwise.
func (s *Service) tryCandidate(ctx context.Context, candidate interfaces.Candidate, prompt string, want int) (models.AnalysisResult, error) {
	client, err := s.newClient(candidate)
	if err != nil {
		s.record(ctx, candidate, OutcomeClientError, err.Error())
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		text, err := client.Complete(ctx, prompt)
		if err == nil {
			result, perr := ParseAnalysis(text, want)
			if perr != nil {
				s.record(ctx, candidate, OutcomeFormatFailure, perr.Error())
				s.logger.Warn().
					Err(perr).
					Str("provider", string(candidate.Provider)).
					Str("model", candidate.Model).
					Msg("Analysis response malformed, advancing rotation")
				return nil, perr
			}
			s.record(ctx, candidate, OutcomeSuccess, "")
			s.logger.Info().
				Str("provider", string(candidate.Provider)).
				Str("model", candidate.Model).
				Int("entries", len(result)).
				Msg("Analysis succeeded")
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if IsRateLimitError(err) && attempt < s.retry.MaxRetries {
			backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(err))
			s.logger.Warn().
				Err(err).
				Str("provider", string(candidate.Provider)).
				Str("model", candidate.Model).
				Int("attempt", attempt+1).
				Str("backoff", backoff.String()).
				Msg("Rate limited, retrying candidate")
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			continue
		}

		outcome := OutcomeTransport
		if IsRateLimitError(err) {
			outcome = OutcomeRateLimited
		}
		s.record(ctx, candidate, outcome, err.Error())
		s.logger.Warn().
			Err(err).
			Str("provider", string(candidate.Provider)).
			Str("model", candidate.Model).
			Msg("Candidate failed, advancing rotation")
		return nil, err
	}
}

func (s *Service) record(ctx context.Context, candidate interfaces.Candidate, outcome AttemptOutcome, detail string) {
	record := AttemptRecord{
		Time:      time.Now(),
		Provider:  candidate.Provider,
		Model:     candidate.Model,
		KeySource: candidate.Source,
		Outcome:   outcome,
		Detail:    detail,
	}
	if s.audit != nil {
		s.audit.Add(record)
	}
	if s.events != nil {
		s.events.Publish(ctx, interfaces.Event{Type: interfaces.EventAnalysisAttempt, Payload: record})
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
