package cache

import (
	"sync"
	"time"

	"github.com/bbernstein/uktides/pkg/uktides"
)

// fakeClock implements a mock time source for testing
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func createTestStations() []uktides.Station {
	return []uktides.Station{
		{
			ID:                         "0256",
			Name:                       "Port St Mary",
			Country:                    uktides.IsleOfMan,
			Location:                   uktides.Coordinates{Latitude: 54.083333, Longitude: -4.766666},
			ContinuousHeightsAvailable: true,
		},
		{
			ID:       "0463",
			Name:     "Cockenzie",
			Country:  uktides.Scotland,
			Location: uktides.Coordinates{Latitude: 55.966667, Longitude: -2.95},
		},
	}
}
