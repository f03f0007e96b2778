package reports

import (
	"sync"
	"time"

	"github.com/ternarybob/nuntium/internal/models"
)

// Cache is the single-entry report cache. Only one current report
// exists at a time; history lives in the store, not here.
type Cache struct {
	mu       sync.RWMutex
	report   *models.Report
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a report cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached report when present and fresh.
func (c *Cache) Get() (*models.Report, bool) {
	return c.GetWithin(c.ttl)
}

// GetWithin is Get with a per-request freshness window, used when a
// caller overrides the configured TTL.
func (c *Cache) GetWithin(ttl time.Duration) (*models.Report, bool) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.report == nil || c.now().Sub(c.storedAt) > ttl {
		return nil, false
	}
	return c.report, true
}

// Put stores a report as the current entry. Degraded reports are
// refused: caching one would mask recovery, serving stale synthesized
// content after the providers come back.
func (c *Cache) Put(report *models.Report) {
	if report == nil || !report.IsAIFilled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	c.storedAt = c.now()
}

// MatchesHash returns the cached report when its content hash equals
// hash, regardless of freshness. A stale entry over unchanged headlines
// is still the right analysis.
func (c *Cache) MatchesHash(hash string) (*models.Report, bool) {
	if hash == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.report == nil || c.report.ContentHash != hash {
		return nil, false
	}
	return c.report, true
}

// Refresh restamps the current entry after a revalidation confirmed the
// content is unchanged.
func (c *Cache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report != nil {
		c.storedAt = c.now()
	}
}
