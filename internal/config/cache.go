package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// In-memory prediction cache
	PredictionLRUSize       int
	PredictionLRUTTLMinutes int

	// DynamoDB prediction cache
	PredictionDynamoTTLHours int
	DynamoTableName          string

	// Station list, in memory and in S3
	StationListTTLHours int
	StationCacheBucket  string

	EnableLRUCache       bool
	EnableDynamoCache    bool
	EnableS3StationCache bool
}

const (
	defaultPredictionLRUSize       = 500
	defaultPredictionLRUTTLMinutes = 30
	defaultPredictionDynamoTTL     = 12
	defaultStationListTTLHours     = 24
	defaultDynamoTableName         = "uktides-predictions-cache"
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		PredictionLRUSize:        getEnvInt("CACHE_PREDICTION_LRU_SIZE", defaultPredictionLRUSize),
		PredictionLRUTTLMinutes:  getEnvInt("CACHE_PREDICTION_LRU_TTL_MINUTES", defaultPredictionLRUTTLMinutes),
		PredictionDynamoTTLHours: getEnvInt("CACHE_PREDICTION_DYNAMO_TTL_HOURS", defaultPredictionDynamoTTL),
		DynamoTableName:          getEnvOrDefault("CACHE_DYNAMO_TABLE", defaultDynamoTableName),
		StationListTTLHours:      getEnvInt("CACHE_STATION_LIST_TTL_HOURS", defaultStationListTTLHours),
		StationCacheBucket:       os.Getenv("CACHE_STATION_BUCKET"),
		EnableLRUCache:           getEnvBool("CACHE_ENABLE_LRU", true),
		EnableDynamoCache:        getEnvBool("CACHE_ENABLE_DYNAMO", false),
		EnableS3StationCache:     getEnvBool("CACHE_ENABLE_S3_STATIONS", false),
	}

	log.Debug().
		Int("PredictionLRUSize", config.PredictionLRUSize).
		Int("PredictionLRUTTLMinutes", config.PredictionLRUTTLMinutes).
		Int("PredictionDynamoTTLHours", config.PredictionDynamoTTLHours).
		Str("DynamoTableName", config.DynamoTableName).
		Int("StationListTTLHours", config.StationListTTLHours).
		Str("StationCacheBucket", config.StationCacheBucket).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Bool("EnableS3StationCache", config.EnableS3StationCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetPredictionLRUTTL() time.Duration {
	return time.Duration(c.PredictionLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetDynamoTTL() time.Duration {
	return time.Duration(c.PredictionDynamoTTLHours) * time.Hour
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLHours) * time.Hour
}

// S3StationCacheEnabled reports whether the S3 snapshot can be used at all.
func (c *CacheConfig) S3StationCacheEnabled() bool {
	return c.EnableS3StationCache && c.StationCacheBucket != ""
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
