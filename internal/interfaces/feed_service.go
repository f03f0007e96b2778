package interfaces

import (
	"context"

	"github.com/ternarybob/nuntium/internal/models"
)

// FeedService fetches and normalizes news items from the configured
// syndication feeds.
type FeedService interface {
	// FetchItems fetches all configured feeds concurrently and returns
	// the merged, filtered, capped item list. Individual feed failures
	// are logged and absorbed; the call fails only when no feed yields
	// any usable item.
	FetchItems(ctx context.Context) ([]models.FeedItem, error)
}
