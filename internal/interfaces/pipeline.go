package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/nuntium/internal/models"
)

// Pipeline state values, published on the event bus as the run
// progresses.
type PipelineState string

const (
	StateIdle       PipelineState = "idle"
	StateCacheCheck PipelineState = "cache_check"
	StateFetching   PipelineState = "fetching"
	StateAnalyzing  PipelineState = "analyzing"
	StateAssembling PipelineState = "assembling"
	StatePersisting PipelineState = "persisting"
	StateDegrading  PipelineState = "degrading"
	StateDone       PipelineState = "done"
	StateFailed     PipelineState = "failed"
)

// ReportSource says where a served report came from.
type ReportSource string

const (
	SourceLive       ReportSource = "live"
	SourceCache      ReportSource = "cache"
	SourceHistorical ReportSource = "historical"
	SourceDegraded   ReportSource = "degraded"
)

var (
	// ErrUpstreamExhausted indicates feeds were fetched but every
	// analysis candidate failed and no stored report could stand in.
	ErrUpstreamExhausted = errors.New("all upstream providers exhausted")

	// ErrNoData indicates no feed data and no stored report exist, so
	// nothing at all can be served.
	ErrNoData = errors.New("no report data available")
)

// RequestOptions shape a single report request.
type RequestOptions struct {
	// ForceRefresh skips the TTL cache check. The content-hash check
	// still applies.
	ForceRefresh bool

	// CallerAPIKey, when set, is tried as the first analysis candidate.
	// Runs carrying a caller key bypass request coalescing and never
	// write the shared cache or store.
	CallerAPIKey string

	// TTL overrides the configured cache TTL when positive.
	TTL time.Duration
}

// ReportResult is a served report plus its provenance.
type ReportResult struct {
	Report *models.Report
	Source ReportSource
}

// ReportPipeline orchestrates one report run end to end.
type ReportPipeline interface {
	// GetReport serves a report per the degradation contract: cache,
	// then a live run, then the latest stored report, then a local
	// synthesis without analysis. It returns ErrUpstreamExhausted or
	// ErrNoData only when every tier failed.
	GetReport(ctx context.Context, opts RequestOptions) (*ReportResult, error)

	// State returns the current pipeline state.
	State() PipelineState
}
