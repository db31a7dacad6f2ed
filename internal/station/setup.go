package station

import (
	"context"

	"github.com/bbernstein/uktides/internal/cache"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// NewFinderFromConfig builds a finder with the in-memory station cache and,
// when enabled, the S3 snapshot shared between instances. An S3 client that
// cannot be created only disables the shared cache.
func NewFinderFromConfig(ctx context.Context, httpClient client.Interface, cfg *config.Config, cacheConfig *config.CacheConfig) *UKHOStationFinder {
	var shared cache.StationListCacheProvider
	if cacheConfig.S3StationCacheEnabled() {
		s3Client, err := cache.NewS3Client(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("S3 station cache disabled")
		} else {
			shared = cache.NewS3StationCache(s3Client, cacheConfig)
		}
	}
	return NewUKHOStationFinder(httpClient, cfg.Endpoints(), cache.NewStationCache(cacheConfig), shared)
}
