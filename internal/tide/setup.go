package tide

import (
	"context"
	"fmt"

	"github.com/bbernstein/uktides/internal/cache"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// NewServiceFromConfig builds the service with the prediction cache layers
// cacheConfig enables.
func NewServiceFromConfig(ctx context.Context, httpClient client.Interface, cfg *config.Config, cacheConfig *config.CacheConfig, finder station.StationFinder) (*Service, error) {
	var durable cache.PayloadStore
	if cacheConfig.EnableDynamoCache {
		dynamoClient, err := cache.NewDynamoClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("DynamoDB prediction cache disabled")
		} else {
			durable = cache.NewDynamoPredictionCache(dynamoClient, cacheConfig)
		}
	}

	predictionCache, err := cache.NewPredictionCache(cacheConfig, durable)
	if err != nil {
		return nil, fmt.Errorf("creating prediction cache: %w", err)
	}

	return NewService(httpClient, cfg.Endpoints(), finder, predictionCache), nil
}
