package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/uktides"
)

// StationCache keeps the parsed station list in memory for one TTL.
type StationCache struct {
	stations    []uktides.Station
	lastUpdated time.Time
	ttl         time.Duration
	clock       clock
	mu          sync.RWMutex
}

func NewStationCache(cacheConfig *config.CacheConfig) *StationCache {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &StationCache{
		stations:    make([]uktides.Station, 0),
		lastUpdated: time.Time{}, // zero time forces the first fetch
		ttl:         cacheConfig.GetStationListTTL(),
		clock:       realClock{},
	}
}

// GetStations returns a copy of the cached list, or nil when expired.
func (c *StationCache) GetStations() []uktides.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isExpired() {
		return nil
	}
	return slices.Clone(c.stations)
}

func (c *StationCache) SetStations(stations []uktides.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = slices.Clone(stations)
	c.lastUpdated = c.clock.Now()
}

func (c *StationCache) isExpired() bool {
	return c.lastUpdated.IsZero() || c.clock.Now().Sub(c.lastUpdated) > c.ttl
}
