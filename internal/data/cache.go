package data

import (
	"context"
	"sync"
	"time"

	"aitrader/internal/domain"
	"aitrader/internal/store"
)

// Cache wraps a BarStore with an in-memory, validate-once bar cache. Sweep
// workers share one cache so a grid of jobs over the same symbol loads and
// validates the series a single time. Loaded series are read-only: callers
// must not mutate the returned slice.
type Cache struct {
	store store.BarStore

	mu     sync.RWMutex
	series map[cacheKey][]domain.Bar
}

type cacheKey struct {
	symbol string
	start  int64
	end    int64
}

// NewCache creates a Cache over the given store.
func NewCache(s store.BarStore) *Cache {
	return &Cache{store: s, series: make(map[cacheKey][]domain.Bar)}
}

// Load returns the validated bar series for the symbol and range, reading
// from the store on first use. Concurrent loaders of the same key may race to
// fill it; the first write wins and later loads return the cached copy.
func (c *Cache) Load(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	key := cacheKey{symbol: symbol, start: start.UnixMilli(), end: end.UnixMilli()}

	c.mu.RLock()
	bars, ok := c.series[key]
	c.mu.RUnlock()
	if ok {
		return bars, nil
	}

	bars, err := c.store.ReadBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.series[key]; ok {
		bars = cached
	} else {
		c.series[key] = bars
	}
	c.mu.Unlock()
	return bars, nil
}
