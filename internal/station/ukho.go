package station

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bbernstein/uktides/internal/cache"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

// UKHOStationFinder looks stations up in the EasyTide station list. The
// list is held in memory and, when configured, shared through S3.
type UKHOStationFinder struct {
	httpClient client.Interface
	endpoints  uktides.Endpoints
	cache      *cache.StationCache
	shared     cache.StationListCacheProvider
}

// NewUKHOStationFinder creates a finder. shared may be nil.
func NewUKHOStationFinder(httpClient client.Interface, endpoints uktides.Endpoints, stationCache *cache.StationCache, shared cache.StationListCacheProvider) *UKHOStationFinder {
	if stationCache == nil {
		stationCache = cache.NewStationCache(config.GetCacheConfig())
	}
	return &UKHOStationFinder{
		httpClient: httpClient,
		endpoints:  endpoints,
		cache:      stationCache,
		shared:     shared,
	}
}

// ListStations returns every station in service order.
func (f *UKHOStationFinder) ListStations(ctx context.Context) ([]uktides.Station, error) {
	return f.getStationList(ctx)
}

func (f *UKHOStationFinder) FindStation(ctx context.Context, stationID uktides.StationID) (*uktides.Station, error) {
	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	for _, s := range stations {
		if s.ID == stationID {
			log.Trace().Str("station_id", string(stationID)).Str("name", s.Name).Msg("FindStation: Found station")
			return &s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, stationID)
}

// FindNearestStations returns up to limit stations ordered by distance from
// lat/lon. A limit of zero or less returns them all.
func (f *UKHOStationFinder) FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]NearbyStation, error) {
	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	// Calculate distances in parallel using worker pool
	const workerCount = 4
	work := make(chan uktides.Station, len(stations))
	results := make(chan NearbyStation, len(stations))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				results <- NearbyStation{
					Station:    s,
					DistanceKm: calculateDistance(lat, lon, float64(s.Location.Latitude), float64(s.Location.Longitude)),
				}
			}
		}()
	}

	for _, s := range stations {
		work <- s
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	nearby := make([]NearbyStation, 0, len(stations))
	for s := range results {
		nearby = append(nearby, s)
	}

	// Workers finish in any order; ties fall back to id.
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})

	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}

	return nearby, nil
}

func (f *UKHOStationFinder) getStationList(ctx context.Context) ([]uktides.Station, error) {
	if cached := f.cache.GetStations(); cached != nil {
		log.Debug().Msg("Cache HIT for station list")
		return cached, nil
	}

	if f.shared != nil {
		stations, err := f.shared.GetStations(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Shared station cache unavailable")
		} else if stations != nil {
			log.Debug().Int("station_count", len(stations)).Msg("Shared cache HIT for station list")
			f.cache.SetStations(stations)
			return stations, nil
		}
	}
	log.Debug().Msg("Cache MISS for station list, calling UKHO")

	stationsURL := f.endpoints.StationsList().String()
	resp, err := f.httpClient.Get(ctx, stationsURL)
	if err != nil {
		var reqErr *client.RequestError
		if !errors.As(err, &reqErr) {
			err = &client.RequestError{URL: stationsURL, Err: err}
		}
		return nil, fmt.Errorf("fetching stations: %w", err)
	}
	if err := client.CheckStatus(stationsURL, resp); err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}

	stations, err := uktides.StationsFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing station list: %w", err)
	}

	log.Debug().Int("station_count", len(stations)).Msgf("Caching list of %d stations", len(stations))
	f.cache.SetStations(stations)

	if f.shared != nil {
		if err := f.shared.SaveStations(ctx, stations); err != nil {
			log.Warn().Err(err).Msg("Saving station list to shared cache")
		}
	}

	return stations, nil
}

func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // km

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
