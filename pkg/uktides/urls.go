package uktides

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the EasyTide host serving both endpoints.
const DefaultBaseURL = "https://easytide.admiralty.co.uk"

const (
	stationsPath    = "/Home/GetStations"
	predictionsPath = "/Home/GetPredictionData"
	stationIDParam  = "stationId"
)

// Endpoints builds request URLs against a base URL. The zero value is not
// usable; use NewEndpoints or the package level functions.
type Endpoints struct {
	base url.URL
}

var defaultEndpoints = Endpoints{base: url.URL{Scheme: "https", Host: "easytide.admiralty.co.uk"}}

// NewEndpoints returns Endpoints rooted at base, e.g. a test server URL.
func NewEndpoints(base string) (Endpoints, error) {
	u, err := url.Parse(base)
	if err != nil {
		return Endpoints{}, fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Endpoints{}, fmt.Errorf("base URL %q must be absolute", base)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return Endpoints{base: *u}, nil
}

// StationsList returns the URL of the full station list.
func (e Endpoints) StationsList() *url.URL {
	u := e.base
	u.Path += stationsPath
	return &u
}

// TidePredictions returns the prediction URL for a station. The id is sent
// exactly as given: leading zeros and letters are significant.
func (e Endpoints) TidePredictions(id StationID) *url.URL {
	u := e.base
	u.Path += predictionsPath
	u.RawQuery = url.Values{stationIDParam: []string{string(id)}}.Encode()
	return &u
}

// StationsListURL returns the EasyTide station list URL.
func StationsListURL() *url.URL {
	return defaultEndpoints.StationsList()
}

// TidePredictionsURL returns the EasyTide prediction URL for a station.
func TidePredictionsURL(id StationID) *url.URL {
	return defaultEndpoints.TidePredictions(id)
}
