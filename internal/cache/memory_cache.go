package cache

import (
	"sync"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/util"
)

// MemoryCache provides an in-memory cache for live FX rates. An entry expires
// after the TTL or at the next benchmark fix, whichever comes first.
type MemoryCache struct {
	rates  map[models.Currency]rateEntry
	rateMu sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
}

type rateEntry struct {
	rate      float64
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		rates: make(map[models.Currency]rateEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetRate retrieves a cached rate if fresh
func (c *MemoryCache) GetRate(ccy models.Currency) (float64, bool) {
	c.rateMu.RLock()
	defer c.rateMu.RUnlock()

	entry, exists := c.rates[ccy]
	if !exists {
		return 0, false
	}
	if !c.now().Before(entry.expiresAt) {
		return 0, false
	}
	return entry.rate, true
}

// SetRate caches a rate
func (c *MemoryCache) SetRate(ccy models.Currency, rate float64) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	now := c.now()
	expires := now.Add(c.ttl)
	if fix := util.NextFixTime(now); fix.After(now) && fix.Before(expires) {
		expires = fix
	}
	c.rates[ccy] = rateEntry{
		rate:      rate,
		expiresAt: expires,
	}
}

// InvalidateRate removes a rate from the cache
func (c *MemoryCache) InvalidateRate(ccy models.Currency) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	delete(c.rates, ccy)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.rateMu.Lock()
	c.rates = make(map[models.Currency]rateEntry)
	c.rateMu.Unlock()
}
