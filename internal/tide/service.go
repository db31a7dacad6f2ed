package tide

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

type Service struct {
	HttpClient      client.Interface
	Endpoints       uktides.Endpoints
	StationFinder   station.StationFinder
	PredictionCache PayloadCache
}

// NewService wires the prediction service. stationFinder and predictionCache
// may be nil: without a finder, station ids are not checked before fetching.
func NewService(httpClient client.Interface, endpoints uktides.Endpoints, stationFinder station.StationFinder, predictionCache PayloadCache) *Service {
	return &Service{
		HttpClient:      httpClient,
		Endpoints:       endpoints,
		StationFinder:   stationFinder,
		PredictionCache: predictionCache,
	}
}

// GetPredictions returns the parsed predictions for a station.
func (s *Service) GetPredictions(ctx context.Context, stationID uktides.StationID) (*uktides.TidePredictions, error) {
	_, predictions, err := s.load(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetRawPredictions returns the service's JSON for a station. The payload is
// only returned once it has parsed cleanly.
func (s *Service) GetRawPredictions(ctx context.Context, stationID uktides.StationID) ([]byte, error) {
	payload, _, err := s.load(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// GetPredictionsNear returns predictions for the station closest to lat/lon.
func (s *Service) GetPredictionsNear(ctx context.Context, lat, lon float64) (*uktides.TidePredictions, error) {
	if s.StationFinder == nil {
		return nil, errors.New("no station finder configured")
	}
	if err := (uktides.Coordinates{Latitude: uktides.DecimalDegrees(lat), Longitude: uktides.DecimalDegrees(lon)}).Validate(); err != nil {
		return nil, NewInvalidRequestError(err.Error())
	}

	stations, err := s.StationFinder.FindNearestStations(ctx, lat, lon, 1)
	if err != nil {
		return nil, fmt.Errorf("finding nearest station: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: none near %.4f,%.4f", station.ErrStationNotFound, lat, lon)
	}

	return s.GetPredictions(ctx, stations[0].ID)
}

func (s *Service) load(ctx context.Context, stationID uktides.StationID) ([]byte, *uktides.TidePredictions, error) {
	if strings.TrimSpace(string(stationID)) == "" {
		return nil, nil, NewInvalidRequestError("station id is required")
	}

	if s.StationFinder != nil {
		if _, err := s.StationFinder.FindStation(ctx, stationID); err != nil {
			return nil, nil, fmt.Errorf("finding station: %w", err)
		}
	}

	if payload, predictions := s.fromCache(ctx, stationID); predictions != nil {
		return payload, predictions, nil
	}

	payload, err := s.fetch(ctx, stationID)
	if err != nil {
		return nil, nil, err
	}

	predictions, err := uktides.TidesForStation(stationID, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing predictions for %s: %w", stationID, err)
	}
	if err := predictions.Validate(); err != nil {
		log.Warn().Err(err).Str("station_id", string(stationID)).Msg("Predictions out of order")
	}

	if s.PredictionCache != nil {
		if err := s.PredictionCache.SavePayload(ctx, stationID, payload); err != nil {
			log.Warn().Err(err).Str("station_id", string(stationID)).Msg("Saving predictions to cache")
		}
	}

	return payload, predictions, nil
}

// fromCache returns a cached payload that still parses. Cache failures are
// logged and treated as misses.
func (s *Service) fromCache(ctx context.Context, stationID uktides.StationID) ([]byte, *uktides.TidePredictions) {
	if s.PredictionCache == nil {
		return nil, nil
	}

	payload, err := s.PredictionCache.GetPayload(ctx, stationID)
	if err != nil {
		log.Warn().Err(err).Str("station_id", string(stationID)).Msg("Reading predictions from cache")
		return nil, nil
	}
	if payload == nil {
		log.Debug().Str("station_id", string(stationID)).Msg("Cache MISS for predictions")
		return nil, nil
	}

	predictions, err := uktides.TidesForStation(stationID, bytes.NewReader(payload))
	if err != nil {
		log.Warn().Err(err).Str("station_id", string(stationID)).Msg("Discarding unparsable cached predictions")
		return nil, nil
	}
	log.Debug().Str("station_id", string(stationID)).Msg("Cache HIT for predictions")
	return payload, predictions
}

func (s *Service) fetch(ctx context.Context, stationID uktides.StationID) ([]byte, error) {
	predictionsURL := s.Endpoints.TidePredictions(stationID).String()
	log.Debug().Str("station_id", string(stationID)).Str("url", predictionsURL).Msg("Fetching predictions")

	resp, err := s.HttpClient.Get(ctx, predictionsURL)
	if err != nil {
		return nil, NewUKHOAPIError("fetching predictions", err)
	}
	if err := client.CheckStatus(predictionsURL, resp); err != nil {
		return nil, NewUKHOAPIError("fetching predictions", err)
	}
	return resp.Body, nil
}
