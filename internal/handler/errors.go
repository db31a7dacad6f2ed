package handler

import (
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/uktides/internal/api"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/internal/tide"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

// errorResponse maps service errors onto HTTP statuses. Anything the
// upstream got wrong, including payloads that fail to parse, is a 502.
func errorResponse(err error, fallback string) (events.APIGatewayProxyResponse, error) {
	var (
		invalid  *tide.InvalidRequestError
		parseErr *uktides.ParseError
		upstream *client.UpstreamError
		reqErr   *client.RequestError
		apiErr   *tide.UKHOAPIError
	)

	switch {
	case errors.Is(err, station.ErrStationNotFound):
		log.Info().Err(err).Msg("Station not found")
		return api.Error("Station not found", http.StatusNotFound)
	case errors.As(err, &invalid):
		return api.Error(invalid.Error(), http.StatusBadRequest)
	case errors.As(err, &parseErr):
		log.Error().Err(err).Str("path", parseErr.Path).Msg("Upstream returned invalid data")
		return api.Error("Upstream returned invalid data", http.StatusBadGateway)
	case errors.As(err, &upstream), errors.As(err, &reqErr), errors.As(err, &apiErr):
		log.Error().Err(err).Msg("Upstream request failed")
		return api.Error("Upstream service unavailable", http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg(fallback)
		return api.Error(fallback, http.StatusInternalServerError)
	}
}

func coordinateError(err error) (events.APIGatewayProxyResponse, error) {
	var invalidCoordErr api.InvalidCoordinatesError
	switch {
	case errors.As(err, &invalidCoordErr):
		return api.Error(err.Error(), http.StatusBadRequest)
	case errors.Is(err, api.ErrMissingCoordinates):
		return api.Error("stationId or lat and lon are required", http.StatusBadRequest)
	default:
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}
}
