package station

import (
	"context"
	"errors"

	"github.com/bbernstein/uktides/pkg/uktides"
)

var ErrStationNotFound = errors.New("station not found")

// StationFinder defines the interface for finding stations
type StationFinder interface {
	ListStations(ctx context.Context) ([]uktides.Station, error)
	FindStation(ctx context.Context, stationID uktides.StationID) (*uktides.Station, error)
	FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]NearbyStation, error)
}

// NearbyStation is a station with its great-circle distance from a query point.
type NearbyStation struct {
	uktides.Station
	DistanceKm float64 `json:"distanceKm"`
}
