package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/nuntium/internal/models"
)

func aiReport(hash string) *models.Report {
	return &models.Report{ID: "report_x", ContentHash: hash, IsAIFilled: true}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(5 * time.Minute)

	_, ok := c.Get()
	assert.False(t, ok, "empty cache has no entry")

	c.Put(aiReport("h1"))
	got, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, "h1", got.ContentHash)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(5 * time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put(aiReport("h1"))

	current = current.Add(4 * time.Minute)
	_, ok := c.Get()
	assert.True(t, ok, "within TTL")

	current = current.Add(2 * time.Minute)
	_, ok = c.Get()
	assert.False(t, ok, "past TTL")
}

func TestCacheGetWithinOverride(t *testing.T) {
	c := NewCache(5 * time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put(aiReport("h1"))
	current = current.Add(2 * time.Minute)

	_, ok := c.GetWithin(time.Minute)
	assert.False(t, ok, "tighter window rejects")

	_, ok = c.GetWithin(10 * time.Minute)
	assert.True(t, ok, "wider window accepts")

	_, ok = c.GetWithin(0)
	assert.True(t, ok, "zero falls back to configured TTL")
}

func TestCacheRefusesDegraded(t *testing.T) {
	c := NewCache(5 * time.Minute)
	c.Put(&models.Report{ID: "report_d", IsAIFilled: false})
	_, ok := c.Get()
	assert.False(t, ok, "degraded reports must never be cached")
}

func TestCacheMatchesHashIgnoresFreshness(t *testing.T) {
	c := NewCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put(aiReport("h1"))
	current = current.Add(time.Hour)

	_, ok := c.Get()
	assert.False(t, ok, "entry is stale")

	got, ok := c.MatchesHash("h1")
	assert.True(t, ok, "stale entry with matching hash is still valid analysis")
	assert.Equal(t, "h1", got.ContentHash)

	_, ok = c.MatchesHash("other")
	assert.False(t, ok)
	_, ok = c.MatchesHash("")
	assert.False(t, ok)
}

func TestCacheRefresh(t *testing.T) {
	c := NewCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put(aiReport("h1"))
	current = current.Add(2 * time.Minute)

	c.Refresh()
	_, ok := c.Get()
	assert.True(t, ok, "refresh restamps the entry")
}
