package tide

import (
	"context"

	"github.com/bbernstein/uktides/pkg/uktides"
)

type PredictionService interface {
	GetPredictions(ctx context.Context, stationID uktides.StationID) (*uktides.TidePredictions, error)
	GetPredictionsNear(ctx context.Context, lat, lon float64) (*uktides.TidePredictions, error)
	GetRawPredictions(ctx context.Context, stationID uktides.StationID) ([]byte, error)
}

// PayloadCache caches raw prediction payloads per station.
type PayloadCache interface {
	GetPayload(ctx context.Context, stationID uktides.StationID) ([]byte, error)
	SavePayload(ctx context.Context, stationID uktides.StationID, payload []byte) error
}
