package uktides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
)

// StationID identifies a station when requesting predictions. It looks
// numeric but is not: "0256" and "256" are different stations and some ids
// carry a letter suffix ("0297A").
type StationID string

func (id StationID) String() string {
	return string(id)
}

// Country is the closed set of countries the service places stations in.
type Country int

const (
	ChannelIslands Country = iota + 1
	England
	Ireland
	IsleOfMan
	NorthernIreland
	Scotland
	Wales
)

var countryNames = map[Country]string{
	ChannelIslands:  "Channel Islands",
	England:         "England",
	Ireland:         "Ireland",
	IsleOfMan:       "Isle of Man",
	NorthernIreland: "Northern Ireland",
	Scotland:        "Scotland",
	Wales:           "Wales",
}

// ParseCountry maps the service's country name to a Country.
func ParseCountry(name string) (Country, error) {
	for c, n := range countryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, &ParseError{Kind: ErrUnknownCountry, Value: name}
}

func (c Country) String() string {
	if n, ok := countryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Country(%d)", int(c))
}

func (c Country) MarshalText() ([]byte, error) {
	n, ok := countryNames[c]
	if !ok {
		return nil, &ParseError{Kind: ErrUnknownCountry, Value: c.String()}
	}
	return []byte(n), nil
}

func (c *Country) UnmarshalText(text []byte) error {
	parsed, err := ParseCountry(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DecimalDegrees is an angle in decimal degrees.
type DecimalDegrees float64

// String formats the absolute angle as degrees, minutes and seconds.
func (d DecimalDegrees) String() string {
	abs := math.Abs(float64(d))
	degrees := math.Floor(abs)
	fraction := abs - degrees
	minutes := math.Floor(60 * fraction)
	seconds := math.Floor(3600*fraction - 60*minutes)
	return fmt.Sprintf("%d°%02d′%02d″", int(degrees), int(minutes), int(seconds))
}

// Coordinates is a station position. The coordinate system is not
// documented by the service; it is presumably WGS 84.
type Coordinates struct {
	Latitude  DecimalDegrees `json:"latitude"`
	Longitude DecimalDegrees `json:"longitude"`
}

func (c Coordinates) String() string {
	ns, ew := 'N', 'E'
	if c.Latitude < 0 {
		ns = 'S'
	}
	if c.Longitude < 0 {
		ew = 'W'
	}
	return fmt.Sprintf("%s%c %s%c", c.Latitude, ns, c.Longitude, ew)
}

// Validate checks the coordinates are on the globe.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || math.IsNaN(float64(c.Latitude)) {
		return &ParseError{Kind: ErrInvalidCoordinate, Value: fmt.Sprintf("latitude %v", float64(c.Latitude))}
	}
	if c.Longitude < -180 || c.Longitude > 180 || math.IsNaN(float64(c.Longitude)) {
		return &ParseError{Kind: ErrInvalidCoordinate, Value: fmt.Sprintf("longitude %v", float64(c.Longitude))}
	}
	return nil
}

// Station is a location the service publishes predictions for.
type Station struct {
	ID       StationID   `json:"id"`
	Name     string      `json:"name"`
	Country  Country     `json:"country"`
	Location Coordinates `json:"location"`
	// ContinuousHeightsAvailable is false for the stations that publish
	// no half-hourly height series.
	ContinuousHeightsAvailable bool `json:"continuousHeightsAvailable"`
}

// Wire format of the station list: a GeoJSON FeatureCollection.

type featureCollection struct {
	Type     string             `json:"type"`
	Features *[]json.RawMessage `json:"features"`
}

type stationFeature struct {
	Geometry   *featureGeometry   `json:"geometry"`
	Properties *featureProperties `json:"properties"`
}

type featureGeometry struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates"`
}

type featureProperties struct {
	ID                         *string `json:"Id"`
	Name                       *string `json:"Name"`
	Country                    *string `json:"Country"`
	ContinuousHeightsAvailable *bool   `json:"ContinuousHeightsAvailable"`
}

// StationsFromReader decodes the station list returned by the stations
// endpoint. Both the GeoJSON FeatureCollection the service returns and a bare
// array of features are accepted. Stations are returned in payload order.
func StationsFromReader(r io.Reader) ([]Station, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed("", fmt.Errorf("reading stations: %w", err))
	}

	features, err := stationFeatures(data)
	if err != nil {
		return nil, err
	}

	stations := make([]Station, 0, len(features))
	seen := make(map[StationID]int, len(features))
	for i, raw := range features {
		path := fmt.Sprintf("features[%d]", i)
		st, err := decodeStation(raw)
		if err != nil {
			return nil, withPath(path, err)
		}
		if first, dup := seen[st.ID]; dup {
			return nil, &ParseError{Kind: ErrMalformedPayload, Path: path + ".properties.Id", Value: string(st.ID),
				Err: fmt.Errorf("duplicate station id, first seen at features[%d]", first)}
		}
		seen[st.ID] = i
		stations = append(stations, st)
	}
	return stations, nil
}

func stationFeatures(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, malformed("", errors.New("empty payload"))
	}

	switch trimmed[0] {
	case '[':
		var features []json.RawMessage
		if err := json.Unmarshal(data, &features); err != nil {
			return nil, malformed("", err)
		}
		return features, nil
	case '{':
		var fc featureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, malformed("", err)
		}
		if fc.Features == nil {
			return nil, missing("features")
		}
		return *fc.Features, nil
	default:
		return nil, malformed("", errors.New("expected a feature collection or an array of stations"))
	}
}

func decodeStation(raw json.RawMessage) (Station, error) {
	var f stationFeature
	if err := json.Unmarshal(raw, &f); err != nil {
		return Station{}, malformed(typeErrorPath(err), err)
	}
	if f.Properties == nil {
		return Station{}, missing("properties")
	}
	if f.Geometry == nil {
		return Station{}, missing("geometry")
	}

	p := f.Properties
	switch {
	case p.ID == nil:
		return Station{}, missing("properties.Id")
	case strings.TrimSpace(*p.ID) == "":
		return Station{}, &ParseError{Kind: ErrMalformedPayload, Path: "properties.Id", Err: errors.New("empty station id")}
	case p.Name == nil:
		return Station{}, missing("properties.Name")
	case p.Country == nil:
		return Station{}, missing("properties.Country")
	}

	country, err := ParseCountry(*p.Country)
	if err != nil {
		return Station{}, withPath("properties.Country", err)
	}

	if len(f.Geometry.Coordinates) < 2 {
		return Station{}, &ParseError{Kind: ErrMalformedPayload, Path: "geometry.coordinates",
			Err: fmt.Errorf("expected [longitude, latitude], got %d values", len(f.Geometry.Coordinates))}
	}
	loc := Coordinates{
		Longitude: DecimalDegrees(f.Geometry.Coordinates[0]),
		Latitude:  DecimalDegrees(f.Geometry.Coordinates[1]),
	}
	if err := loc.Validate(); err != nil {
		return Station{}, withPath("geometry.coordinates", err)
	}

	st := Station{
		ID:       StationID(*p.ID),
		Name:     *p.Name,
		Country:  country,
		Location: loc,
	}
	if p.ContinuousHeightsAvailable != nil {
		st.ContinuousHeightsAvailable = *p.ContinuousHeightsAvailable
	}
	return st, nil
}

// typeErrorPath extracts the field path from a json type mismatch.
func typeErrorPath(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return te.Field
	}
	return ""
}

type stationFeatureOut struct {
	Type       string               `json:"type"`
	Geometry   featureGeometry      `json:"geometry"`
	Properties stationPropertiesOut `json:"properties"`
}

type stationPropertiesOut struct {
	ID                         string `json:"Id"`
	Name                       string `json:"Name"`
	Country                    string `json:"Country"`
	ContinuousHeightsAvailable bool   `json:"ContinuousHeightsAvailable"`
}

// MarshalStations encodes stations in the shape served by the stations
// endpoint, so the output can be read back with StationsFromReader.
func MarshalStations(stations []Station) ([]byte, error) {
	out := struct {
		Type     string              `json:"type"`
		Features []stationFeatureOut `json:"features"`
	}{
		Type:     "FeatureCollection",
		Features: make([]stationFeatureOut, 0, len(stations)),
	}
	for _, s := range stations {
		country, err := s.Country.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", s.ID, err)
		}
		out.Features = append(out.Features, stationFeatureOut{
			Type: "Feature",
			Geometry: featureGeometry{
				Type:        "Point",
				Coordinates: []float64{float64(s.Location.Longitude), float64(s.Location.Latitude)},
			},
			Properties: stationPropertiesOut{
				ID:                         string(s.ID),
				Name:                       s.Name,
				Country:                    string(country),
				ContinuousHeightsAvailable: s.ContinuousHeightsAvailable,
			},
		})
	}
	return json.Marshal(out)
}

// StationsSortedByID returns a copy of stations ordered by id, for display.
func StationsSortedByID(stations []Station) []Station {
	sorted := slices.Clone(stations)
	slices.SortStableFunc(sorted, func(a, b Station) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return sorted
}
