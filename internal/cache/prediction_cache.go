package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/uktides"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// PayloadStore is a durable layer behind the in-memory cache. Payloads are
// the raw prediction JSON, keyed by station and London calendar date.
type PayloadStore interface {
	GetPayload(ctx context.Context, stationID uktides.StationID, date string) ([]byte, error)
	SavePayload(ctx context.Context, stationID uktides.StationID, date string, payload []byte) error
}

type lruEntry struct {
	payload   []byte
	expiresAt time.Time
}

// PredictionCache is a two-layer cache of raw prediction payloads: an LRU in
// front of an optional PayloadStore. Callers parse what they get back, so
// cached data goes through the same validation as a fresh response.
type PredictionCache struct {
	lru     *lru.Cache[string, *lruEntry]
	durable PayloadStore
	ttl     time.Duration
	clock   clock

	lruHits       atomic.Uint64
	lruMisses     atomic.Uint64
	durableHits   atomic.Uint64
	durableMisses atomic.Uint64
}

// NewPredictionCache builds the cache described by cacheConfig. durable may
// be nil, in which case only the LRU layer is used.
func NewPredictionCache(cacheConfig *config.CacheConfig, durable PayloadStore) (*PredictionCache, error) {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}

	c := &PredictionCache{
		durable: durable,
		ttl:     cacheConfig.GetPredictionLRUTTL(),
		clock:   realClock{},
	}
	if cacheConfig.EnableLRUCache {
		l, err := lru.New[string, *lruEntry](cacheConfig.PredictionLRUSize)
		if err != nil {
			return nil, fmt.Errorf("creating LRU cache: %w", err)
		}
		c.lru = l
	}
	return c, nil
}

// predictionDate is the London calendar date the service's answer is
// valid for.
func (c *PredictionCache) predictionDate() string {
	return c.clock.Now().In(uktides.Location()).Format("2006-01-02")
}

func getCacheKey(stationID uktides.StationID, date string) string {
	return fmt.Sprintf("%s:%s", stationID, date)
}

// GetPayload returns the cached payload for today, or nil on a miss.
func (c *PredictionCache) GetPayload(ctx context.Context, stationID uktides.StationID) ([]byte, error) {
	date := c.predictionDate()
	key := getCacheKey(stationID, date)

	if c.lru != nil {
		if entry, ok := c.lru.Get(key); ok {
			if c.clock.Now().Before(entry.expiresAt) {
				c.lruHits.Add(1)
				log.Debug().Str("station_id", string(stationID)).Msg("LRU cache HIT for predictions")
				return entry.payload, nil
			}
			c.lru.Remove(key)
		}
		c.lruMisses.Add(1)
	}

	if c.durable == nil {
		return nil, nil
	}

	payload, err := c.durable.GetPayload(ctx, stationID, date)
	if err != nil {
		return nil, fmt.Errorf("getting predictions from durable cache: %w", err)
	}
	if payload == nil {
		c.durableMisses.Add(1)
		return nil, nil
	}

	c.durableHits.Add(1)
	log.Debug().Str("station_id", string(stationID)).Msg("Durable cache HIT for predictions")
	c.addToLRU(key, payload)
	return payload, nil
}

// SavePayload stores payload in both layers under today's date.
func (c *PredictionCache) SavePayload(ctx context.Context, stationID uktides.StationID, payload []byte) error {
	date := c.predictionDate()
	c.addToLRU(getCacheKey(stationID, date), payload)

	if c.durable != nil {
		if err := c.durable.SavePayload(ctx, stationID, date, payload); err != nil {
			return fmt.Errorf("saving predictions to durable cache: %w", err)
		}
	}
	return nil
}

func (c *PredictionCache) addToLRU(key string, payload []byte) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, &lruEntry{
		payload:   payload,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns statistics about cache hits and misses
func (c *PredictionCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":       c.lruHits.Load(),
		"lru_misses":     c.lruMisses.Load(),
		"durable_hits":   c.durableHits.Load(),
		"durable_misses": c.durableMisses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *PredictionCache) Clear() {
	if c.lru != nil {
		c.lru.Purge()
	}
}
