package reports

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
	"github.com/ternarybob/nuntium/internal/services/feeds"
	"github.com/ternarybob/nuntium/internal/services/llm"
	"golang.org/x/sync/singleflight"
)

// Pipeline orchestrates one report run: cache check, concurrent fetch,
// analysis rotation, assembly, and persistence, degrading tier by tier
// when upstreams fail.
type Pipeline struct {
	feeds     interfaces.FeedService
	quotes    interfaces.QuoteService
	analysis  interfaces.AnalysisService
	cache     *Cache
	store     interfaces.ReportStorage
	assembler *Assembler
	events    interfaces.EventService
	config    common.ReportConfig
	llmConfig common.LLMConfig
	logger    arbor.ILogger

	group  singleflight.Group
	saveWG sync.WaitGroup

	mu    sync.RWMutex
	state interfaces.PipelineState
}

// NewPipeline creates the report pipeline.
func NewPipeline(
	feedService interfaces.FeedService,
	quoteService interfaces.QuoteService,
	analysisService interfaces.AnalysisService,
	cache *Cache,
	store interfaces.ReportStorage,
	assembler *Assembler,
	eventService interfaces.EventService,
	config common.ReportConfig,
	llmConfig common.LLMConfig,
	logger arbor.ILogger,
) *Pipeline {
	return &Pipeline{
		feeds:     feedService,
		quotes:    quoteService,
		analysis:  analysisService,
		cache:     cache,
		store:     store,
		assembler: assembler,
		events:    eventService,
		config:    config,
		llmConfig: llmConfig,
		logger:    logger,
		state:     interfaces.StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() interfaces.PipelineState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// GetReport serves a report per the degradation contract. Shared
// requests are coalesced so a burst of readers triggers one run; runs
// carrying a caller API key bypass coalescing because their result must
// not be shared.
func (p *Pipeline) GetReport(ctx context.Context, opts interfaces.RequestOptions) (*interfaces.ReportResult, error) {
	if opts.CallerAPIKey != "" {
		return p.run(ctx, opts, false)
	}

	key := "report"
	if opts.ForceRefresh {
		key = "report:refresh"
	}
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		// The coalesced run is owned by every waiter, not the request
		// that happened to start it. Detach from the initiator's
		// cancellation; the pipeline deadline still bounds the run.
		return p.run(context.WithoutCancel(ctx), opts, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*interfaces.ReportResult), nil
}

// Wait blocks until background persistence finishes. Used on shutdown
// and in tests.
func (p *Pipeline) Wait() {
	p.saveWG.Wait()
}

func (p *Pipeline) run(ctx context.Context, opts interfaces.RequestOptions, shared bool) (*interfaces.ReportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, common.Duration(p.config.PipelineDeadline, 20*time.Second))
	defer cancel()

	p.setState(ctx, interfaces.StateCacheCheck)
	if !opts.ForceRefresh {
		if cached, ok := p.cache.GetWithin(opts.TTL); ok {
			p.setState(ctx, interfaces.StateDone)
			return &interfaces.ReportResult{Report: cached, Source: interfaces.SourceCache}, nil
		}
	}

	p.setState(ctx, interfaces.StateFetching)
	items, snapshot, feedErr := p.fetch(ctx)
	if feedErr != nil {
		if ctx.Err() != nil {
			p.setState(ctx, interfaces.StateFailed)
			return nil, ctx.Err()
		}
		return p.degradeNoFeeds(ctx, feedErr)
	}

	// Unchanged headlines mean the cached analysis is still the right
	// one, even on a forced refresh.
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	hash := common.ContentHash(titles)
	if cached, ok := p.cache.MatchesHash(hash); ok {
		if shared {
			p.cache.Refresh()
		}
		p.setState(ctx, interfaces.StateDone)
		p.logger.Info().Str("content_hash", hash).Msg("Content unchanged, serving cached analysis")
		return &interfaces.ReportResult{Report: cached, Source: interfaces.SourceCache}, nil
	}

	p.setState(ctx, interfaces.StateAnalyzing)
	extra := llm.CallerCandidates(p.llmConfig, opts.CallerAPIKey)
	analysis, winner, err := p.analysis.Analyze(ctx, items, extra...)
	if err != nil {
		if ctx.Err() != nil {
			p.setState(ctx, interfaces.StateFailed)
			return nil, ctx.Err()
		}
		return p.degradeNoAnalysis(ctx, items, snapshot, err)
	}

	p.setState(ctx, interfaces.StateAssembling)
	report := p.assembler.Assemble(items, analysis, snapshot, winner)

	p.setState(ctx, interfaces.StatePersisting)
	if shared {
		p.cache.Put(report)
		p.persistAsync(report)
	}

	p.setState(ctx, interfaces.StateDone)
	p.publish(ctx, interfaces.EventReportReady, report.ID)
	return &interfaces.ReportResult{Report: report, Source: interfaces.SourceLive}, nil
}

// fetch runs the feed and quote fetches concurrently. Only the feed
// fetch can fail the stage; quotes degrade to empty buckets.
func (p *Pipeline) fetch(ctx context.Context) ([]models.FeedItem, *models.MarketSnapshot, error) {
	var (
		wg       sync.WaitGroup
		items    []models.FeedItem
		snapshot *models.MarketSnapshot
		feedErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		items, feedErr = p.feeds.FetchItems(ctx)
	}()
	go func() {
		defer wg.Done()
		snap, err := p.quotes.FetchSnapshot(ctx)
		if err != nil {
			p.logger.Warn().Err(err).Msg("Quote snapshot unavailable")
			snap = &models.MarketSnapshot{}
		}
		snapshot = snap
	}()
	wg.Wait()

	return items, snapshot, feedErr
}

// degradeNoFeeds handles a run with no feed data at all: the latest
// stored report stands in, otherwise there is nothing to serve.
func (p *Pipeline) degradeNoFeeds(ctx context.Context, cause error) (*interfaces.ReportResult, error) {
	p.setState(ctx, interfaces.StateDegrading)
	p.logger.Warn().Err(cause).Msg("Feed fetch failed, falling back to stored report")

	stored, err := p.store.LoadLatestReport(ctx)
	if err == nil {
		p.setState(ctx, interfaces.StateDone)
		return &interfaces.ReportResult{Report: stored, Source: interfaces.SourceHistorical}, nil
	}

	p.setState(ctx, interfaces.StateFailed)
	if errors.Is(err, interfaces.ErrNoReports) && errors.Is(cause, feeds.ErrNoItems) {
		return nil, interfaces.ErrNoData
	}
	return nil, interfaces.ErrUpstreamExhausted
}

// degradeNoAnalysis handles exhausted analysis candidates: prefer the
// latest stored report, then synthesize one locally from the fetched
// data. The synthesized report is served but never cached or persisted,
// so recovery is attempted on the next request.
func (p *Pipeline) degradeNoAnalysis(ctx context.Context, items []models.FeedItem, snapshot *models.MarketSnapshot, cause error) (*interfaces.ReportResult, error) {
	p.setState(ctx, interfaces.StateDegrading)
	p.logger.Warn().Err(cause).Msg("Analysis exhausted, degrading")

	if stored, err := p.store.LoadLatestReport(ctx); err == nil {
		p.setState(ctx, interfaces.StateDone)
		return &interfaces.ReportResult{Report: stored, Source: interfaces.SourceHistorical}, nil
	}

	if len(items) > 0 {
		report := p.assembler.AssembleDegraded(items, snapshot)
		p.setState(ctx, interfaces.StateDone)
		return &interfaces.ReportResult{Report: report, Source: interfaces.SourceDegraded}, nil
	}

	p.setState(ctx, interfaces.StateFailed)
	return nil, interfaces.ErrUpstreamExhausted
}

// persistAsync saves the report off the request path. A slow or broken
// store must not delay the response; failures are logged and the next
// run tries again.
func (p *Pipeline) persistAsync(report *models.Report) {
	p.saveWG.Add(1)
	go func() {
		defer p.saveWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.store.SaveReport(ctx, report); err != nil {
			p.logger.Error().Err(err).Str("report_id", report.ID).Msg("Background report save failed")
		}
	}()
}

func (p *Pipeline) setState(ctx context.Context, state interfaces.PipelineState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	p.publish(ctx, interfaces.EventPipelineStateChanged, string(state))
}

func (p *Pipeline) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if p.events == nil {
		return
	}
	p.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload})
}
