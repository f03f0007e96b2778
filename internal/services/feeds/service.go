package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
)

// ErrNoItems indicates every configured feed failed or yielded nothing.
var ErrNoItems = errors.New("no feed items available")

const maxFeedBody = 4 << 20 // 4 MB

// Service implements FeedService over the cataloged RSS feeds.
type Service struct {
	sources []common.FeedSource
	config  common.FeedsConfig
	markers []string
	client  *http.Client
	logger  arbor.ILogger
}

// NewService creates a new feed service.
func NewService(catalog *common.Catalog, config common.FeedsConfig, logger arbor.ILogger) interfaces.FeedService {
	markers := config.ExcludeMarkers
	if len(markers) == 0 {
		markers = DefaultExcludeMarkers
	}
	return &Service{
		sources: catalog.Feeds,
		config:  config,
		markers: markers,
		client: &http.Client{
			Timeout: common.Duration(config.Timeout, 10*time.Second),
		},
		logger: logger,
	}
}

// FetchItems fetches all feeds concurrently, preserving catalog order
// in the merged result. A feed that fails is logged and skipped.
func (s *Service) FetchItems(ctx context.Context) ([]models.FeedItem, error) {
	results := make([][]models.FeedItem, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(idx int, source common.FeedSource) {
			defer wg.Done()
			items, err := s.fetchOne(ctx, source)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("feed", source.Name).
					Msg("Feed fetch failed")
				return
			}
			results[idx] = items
		}(i, src)
	}
	wg.Wait()

	var merged []models.FeedItem
	for _, items := range results {
		merged = append(merged, items...)
	}
	merged = filterItems(merged, s.markers)
	if len(merged) > s.config.MaxItems {
		merged = merged[:s.config.MaxItems]
	}

	if len(merged) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoItems
	}

	s.logger.Info().
		Int("items", len(merged)).
		Int("feeds", len(s.sources)).
		Msg("Feed items fetched")
	return merged, nil
}

func (s *Service) fetchOne(ctx context.Context, source common.FeedSource) ([]models.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "nuntium/"+common.GetVersion())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return parseFeed(body, s.config.MaxDescription)
}
