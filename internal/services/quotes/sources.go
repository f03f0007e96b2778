package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/piquette/finance-go/quote"
	"github.com/ternarybob/nuntium/internal/common"
)

// rawQuote is a fetched, unformatted quote.
type rawQuote struct {
	Value         float64
	ChangePercent float64
}

// quoteSource fetches one symbol from one upstream.
type quoteSource interface {
	Fetch(ctx context.Context, symbol common.SymbolSource) (rawQuote, error)
}

// APIError is a non-2xx response from a quote endpoint.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote endpoint %s returned status %d", e.Endpoint, e.StatusCode)
}

// yahooSource adapts the Yahoo quote API. The underlying client takes
// no context, so the call runs in a goroutine and the result is dropped
// when the context ends first.
type yahooSource struct{}

func (yahooSource) Fetch(ctx context.Context, symbol common.SymbolSource) (rawQuote, error) {
	type result struct {
		q   rawQuote
		err error
	}
	done := make(chan result, 1)

	go func() {
		q, err := quote.Get(symbol.Symbol)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to get quote for %s: %w", symbol.Symbol, err)}
			return
		}
		if q == nil {
			done <- result{err: fmt.Errorf("no quote returned for %s", symbol.Symbol)}
			return
		}
		done <- result{q: rawQuote{
			Value:         q.RegularMarketPrice,
			ChangePercent: q.RegularMarketChangePercent,
		}}
	}()

	select {
	case <-ctx.Done():
		return rawQuote{}, ctx.Err()
	case r := <-done:
		return r.q, r.err
	}
}

// chartSource fetches from a configured JSON chart endpoint. The
// response carries the latest price and day-over-day change percent.
type chartSource struct {
	client *http.Client
}

type chartResponse struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

func (s chartSource) Fetch(ctx context.Context, symbol common.SymbolSource) (rawQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, symbol.Endpoint, nil)
	if err != nil {
		return rawQuote{}, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return rawQuote{}, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return rawQuote{}, &APIError{StatusCode: resp.StatusCode, Endpoint: symbol.Endpoint}
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return rawQuote{}, fmt.Errorf("failed to decode chart response: %w", err)
	}
	return rawQuote{Value: body.Price, ChangePercent: body.ChangePercent}, nil
}
