package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/internal/handler"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func setup() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	log.Info().Str("env", cfg.Environment).Msg("Starting stations function")

	httpClient := client.New(client.Options{Timeout: cfg.HTTPTimeout})
	finder := station.NewFinderFromConfig(context.Background(), httpClient, cfg, config.GetCacheConfig())
	stationsHandler = handler.NewStationsHandler(finder)
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	setupOnce.Do(setup)
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	setupOnce.Do(setup)
	lambdaStart(handleRequest)
}
