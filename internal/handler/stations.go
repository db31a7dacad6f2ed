package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/uktides/internal/api"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

const (
	defaultStationLimit = 5
	maxStationLimit     = 50
)

type StationsHandler struct {
	stationFinder station.StationFinder
}

func NewStationsHandler(finder station.StationFinder) *StationsHandler {
	return &StationsHandler{
		stationFinder: finder,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters
	log.Info().Interface("params", params).Msg("Handling stations request")

	if stationID, ok := params["stationId"]; ok {
		s, err := h.stationFinder.FindStation(ctx, uktides.StationID(stationID))
		if err != nil {
			return errorResponse(err, "Error finding station")
		}
		return api.Success(api.NewStationsResponse([]uktides.Station{*s}))
	}

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		return coordinateError(err)
	}

	limit := api.ParseLimit(params, defaultStationLimit, maxStationLimit)
	stations, err := h.stationFinder.FindNearestStations(ctx, lat, lon, limit)
	if err != nil {
		return errorResponse(err, "Error finding stations")
	}

	return api.Success(api.NewNearbyStationsResponse(stations))
}
