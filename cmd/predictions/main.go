package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/uktides/internal/api"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/internal/handler"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/internal/tide"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart        = lambda.Start // Allow mocking of lambda.Start in tests
	predictionsHandler *handler.PredictionsHandler
	setupErr           error
	setupOnce          sync.Once
)

func setup() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	log.Info().Str("env", cfg.Environment).Msg("Starting predictions function")

	ctx := context.Background()
	cacheConfig := config.GetCacheConfig()
	httpClient := client.New(client.Options{Timeout: cfg.HTTPTimeout})

	finder := station.NewFinderFromConfig(ctx, httpClient, cfg, cacheConfig)
	service, err := tide.NewServiceFromConfig(ctx, httpClient, cfg, cacheConfig, finder)
	if err != nil {
		setupErr = err
		log.Error().Err(err).Msg("Failed to initialize prediction service")
		return
	}
	predictionsHandler = handler.NewPredictionsHandler(service)
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	setupOnce.Do(setup)
	if setupErr != nil {
		return api.Error("Service unavailable", http.StatusInternalServerError)
	}
	return predictionsHandler.HandleRequest(ctx, request)
}

func main() {
	setupOnce.Do(setup)
	lambdaStart(handleRequest)
}
