package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/nuntium/internal/common"
)

func TestFetchSnapshotPartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": 68250.0, "change_percent": -1.2}`))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	cat := &common.Catalog{
		Buckets: []common.BucketDef{
			{Key: "domestic", Title: "Domestic Markets"},
			{Key: "crypto", Title: "Crypto & FX"},
		},
		Symbols: []common.SymbolSource{
			{Name: "KOSPI", Symbol: "^KS11", Source: "chart", Endpoint: bad.URL, Bucket: "domestic"},
			{Name: "BTC", Symbol: "BTC-USD", Source: "chart", Endpoint: good.URL, Bucket: "crypto"},
		},
	}

	svc := NewService(cat, common.QuotesConfig{Timeout: "5s", RateLimit: 100}, common.NewTestLogger())
	snap, err := svc.FetchSnapshot(context.Background())
	require.NoError(t, err)

	// Every declared bucket is present even when its symbols failed.
	require.Len(t, snap.Buckets, 2)
	assert.Equal(t, "domestic", snap.Buckets[0].Key)
	assert.Empty(t, snap.Buckets[0].Items, "failed symbol must be absent, not zeroed")

	require.Len(t, snap.Buckets[1].Items, 1)
	btc := snap.Buckets[1].Items[0]
	assert.Equal(t, "BTC", btc.Name)
	assert.Equal(t, "68,250", btc.Value)
	assert.Equal(t, "-1.20%", btc.ChangePercent)
	assert.Equal(t, "down", string(btc.Direction))
}

func TestFetchSnapshotAllFailed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	cat := &common.Catalog{
		Buckets: []common.BucketDef{{Key: "crypto", Title: "Crypto"}},
		Symbols: []common.SymbolSource{
			{Name: "BTC", Symbol: "BTC-USD", Source: "chart", Endpoint: bad.URL, Bucket: "crypto"},
		},
	}

	svc := NewService(cat, common.QuotesConfig{Timeout: "5s", RateLimit: 100}, common.NewTestLogger())
	snap, err := svc.FetchSnapshot(context.Background())
	require.NoError(t, err, "partial data is never an error")
	assert.True(t, snap.IsEmpty())
	require.Len(t, snap.Buckets, 1, "buckets survive total failure")
}

func TestFetchSnapshotNoSymbols(t *testing.T) {
	cat := &common.Catalog{
		Buckets: []common.BucketDef{{Key: "global", Title: "Global"}},
	}
	svc := NewService(cat, common.QuotesConfig{Timeout: "5s"}, common.NewTestLogger())
	snap, err := svc.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.Len(t, snap.Buckets, 1)
}
