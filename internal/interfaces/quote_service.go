package interfaces

import (
	"context"

	"github.com/ternarybob/nuntium/internal/models"
)

// QuoteService fetches market quotes for the cataloged symbols.
type QuoteService interface {
	// FetchSnapshot fetches all cataloged symbols concurrently. Symbols
	// that fail are simply absent from their bucket; the snapshot itself
	// always carries every declared bucket and the call never fails on
	// partial data.
	FetchSnapshot(ctx context.Context) (*models.MarketSnapshot, error)
}
