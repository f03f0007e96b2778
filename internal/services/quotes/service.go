package quotes

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
	"golang.org/x/time/rate"
)

// Service implements QuoteService over the cataloged symbols.
type Service struct {
	catalog *common.Catalog
	config  common.QuotesConfig
	sources map[string]quoteSource
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewService creates a new quote service.
func NewService(catalog *common.Catalog, config common.QuotesConfig, logger arbor.ILogger) interfaces.QuoteService {
	client := &http.Client{
		Timeout: common.Duration(config.Timeout, 4*time.Second),
	}

	rps := config.RateLimit
	if rps <= 0 {
		rps = 5
	}

	return &Service{
		catalog: catalog,
		config:  config,
		sources: map[string]quoteSource{
			"yahoo": yahooSource{},
			"chart": chartSource{client: client},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		logger:  logger,
	}
}

// FetchSnapshot fetches every cataloged symbol concurrently. The
// snapshot always carries every declared bucket, in catalog order;
// symbols that failed are simply absent from theirs.
func (s *Service) FetchSnapshot(ctx context.Context) (*models.MarketSnapshot, error) {
	type fetched struct {
		datum models.QuoteDatum
		ok    bool
	}

	results := make([]fetched, len(s.catalog.Symbols))
	var wg sync.WaitGroup
	for i, sym := range s.catalog.Symbols {
		wg.Add(1)
		go func(idx int, symbol common.SymbolSource) {
			defer wg.Done()
			datum, err := s.fetchOne(ctx, symbol)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("symbol", symbol.Symbol).
					Str("source", symbol.Source).
					Msg("Quote fetch failed")
				return
			}
			results[idx] = fetched{datum: datum, ok: true}
		}(i, sym)
	}
	wg.Wait()

	snapshot := &models.MarketSnapshot{}
	for _, b := range s.catalog.Buckets {
		snapshot.Buckets = append(snapshot.Buckets, models.MarketBucket{
			Key:   b.Key,
			Title: b.Title,
			Items: []models.QuoteDatum{},
		})
	}
	for i, r := range results {
		if !r.ok {
			continue
		}
		if bucket := snapshot.Bucket(s.catalog.Symbols[i].Bucket); bucket != nil {
			bucket.Items = append(bucket.Items, r.datum)
		}
	}

	if snapshot.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Int("quotes", snapshot.TotalItems()).
		Int("symbols", len(s.catalog.Symbols)).
		Msg("Market snapshot fetched")
	return snapshot, nil
}

func (s *Service) fetchOne(ctx context.Context, symbol common.SymbolSource) (models.QuoteDatum, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.QuoteDatum{}, err
	}

	source, ok := s.sources[symbol.Source]
	if !ok {
		// Catalog validation rejects unknown sources; this guards
		// hand-built catalogs in tests.
		source = s.sources["chart"]
	}

	raw, err := source.Fetch(ctx, symbol)
	if err != nil {
		return models.QuoteDatum{}, err
	}

	return models.QuoteDatum{
		Name:          symbol.Name,
		Value:         FormatValue(raw.Value),
		ChangePercent: FormatChangePercent(raw.ChangePercent),
		Direction:     DirectionOf(raw.ChangePercent),
	}, nil
}
