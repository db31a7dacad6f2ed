package handler

import (
	"context"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/uktides/internal/api"
	"github.com/bbernstein/uktides/internal/tide"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

type PredictionsHandler struct {
	service tide.PredictionService
}

func NewPredictionsHandler(service tide.PredictionService) *PredictionsHandler {
	return &PredictionsHandler{
		service: service,
	}
}

// HandleRequest serves ?stationId=ID (optionally &raw=true for the
// service's own JSON) or ?lat=&lon= for the nearest station.
func (h *PredictionsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters
	log.Info().Interface("params", params).Msg("Handling predictions request")

	if stationID, ok := params["stationId"]; ok {
		id := uktides.StationID(stationID)
		if raw, _ := strconv.ParseBool(params["raw"]); raw {
			payload, err := h.service.GetRawPredictions(ctx, id)
			if err != nil {
				return errorResponse(err, "Error getting predictions")
			}
			return api.RawJSON(payload)
		}

		predictions, err := h.service.GetPredictions(ctx, id)
		if err != nil {
			return errorResponse(err, "Error getting predictions")
		}
		return api.Success(api.NewPredictionsResponse(predictions))
	}

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		return coordinateError(err)
	}

	predictions, err := h.service.GetPredictionsNear(ctx, lat, lon)
	if err != nil {
		return errorResponse(err, "Error getting predictions")
	}
	return api.Success(api.NewPredictionsResponse(predictions))
}
