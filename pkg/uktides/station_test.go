package uktides

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestStationsFromReader(t *testing.T) {
	t.Parallel()

	want := []Station{
		{ID: "1603", Name: "BRAYE", Country: ChannelIslands, Location: Coordinates{Latitude: 49.716666, Longitude: -2.2}, ContinuousHeightsAvailable: true},
		{ID: "0681", Name: "Gweedore Harbour", Country: Ireland, Location: Coordinates{Latitude: 55.066666, Longitude: -8.316666}, ContinuousHeightsAvailable: true},
		{ID: "0102", Name: "RAMSGATE", Country: England, Location: Coordinates{Latitude: 51.333333, Longitude: 1.416666}, ContinuousHeightsAvailable: true},
		{ID: "0463", Name: "Connah's Quay", Country: Wales, Location: Coordinates{Latitude: 53.216666, Longitude: -3.05}, ContinuousHeightsAvailable: false},
		{ID: "0627", Name: "Cranfield Point", Country: NorthernIreland, Location: Coordinates{Latitude: 54.016666, Longitude: -6.066666}, ContinuousHeightsAvailable: true},
		{ID: "0297A", Name: "Gills Bay", Country: Scotland, Location: Coordinates{Latitude: 58.633333, Longitude: -3.166666}, ContinuousHeightsAvailable: true},
		{ID: "0256", Name: "Port St Mary", Country: IsleOfMan, Location: Coordinates{Latitude: 54.083333, Longitude: -4.766666}, ContinuousHeightsAvailable: true},
	}

	got, err := StationsFromReader(bytes.NewReader(readFixture(t, "stations.json")))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stations mismatch (-want +got):\n%s", diff)
	}
}

func TestStationsRoundTrip(t *testing.T) {
	t.Parallel()

	first, err := StationsFromReader(bytes.NewReader(readFixture(t, "stations.json")))
	require.NoError(t, err)

	encoded, err := MarshalStations(first)
	require.NoError(t, err)

	second, err := StationsFromReader(bytes.NewReader(encoded))
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip changed stations (-first +second):\n%s", diff)
	}
}

func TestStationsIdempotent(t *testing.T) {
	t.Parallel()

	data := readFixture(t, "stations.json")
	a, err := StationsFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	b, err := StationsFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStationsBareArray(t *testing.T) {
	t.Parallel()

	input := `[
		{"geometry": {"coordinates": [-1.1, 50.8]}, "properties": {"Id": "0065", "Name": "Portsmouth", "Country": "England"}}
	]`
	got, err := StationsFromReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StationID("0065"), got[0].ID)
	assert.False(t, got[0].ContinuousHeightsAvailable)
}

func TestStationsFromReaderErrors(t *testing.T) {
	t.Parallel()

	feature := func(id, country string, lon, lat string) string {
		return `{"type":"Feature","geometry":{"type":"Point","coordinates":[` + lon + `,` + lat + `]},` +
			`"properties":{"Id":` + id + `,"Name":"Somewhere","Country":"` + country + `"}}`
	}
	collection := func(features ...string) string {
		return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
	}

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantPath string
	}{
		{name: "empty", input: "", wantErr: ErrMalformedPayload},
		{name: "not json", input: "<html>", wantErr: ErrMalformedPayload},
		{name: "top level string", input: `"stations"`, wantErr: ErrMalformedPayload},
		{name: "missing features", input: `{"type":"FeatureCollection"}`, wantErr: ErrMalformedPayload, wantPath: "features"},
		{name: "features not an array", input: `{"features":{}}`, wantErr: ErrMalformedPayload},
		{name: "numeric id", input: collection(feature(`256`, "England", "1", "51")), wantErr: ErrMalformedPayload, wantPath: "features[0].properties.Id"},
		{name: "empty id", input: collection(feature(`""`, "England", "1", "51")), wantErr: ErrMalformedPayload, wantPath: "features[0].properties.Id"},
		{name: "missing properties", input: `[{"geometry":{"coordinates":[1,51]}}]`, wantErr: ErrMalformedPayload, wantPath: "features[0].properties"},
		{name: "missing geometry", input: `[{"properties":{"Id":"1","Name":"x","Country":"England"}}]`, wantErr: ErrMalformedPayload, wantPath: "features[0].geometry"},
		{name: "missing name", input: `[{"geometry":{"coordinates":[1,51]},"properties":{"Id":"1","Country":"England"}}]`, wantErr: ErrMalformedPayload, wantPath: "features[0].properties.Name"},
		{name: "one coordinate", input: `[{"geometry":{"coordinates":[1]},"properties":{"Id":"1","Name":"x","Country":"England"}}]`, wantErr: ErrMalformedPayload, wantPath: "features[0].geometry.coordinates"},
		{name: "unknown country", input: collection(feature(`"0001"`, "France", "1", "51")), wantErr: ErrUnknownCountry, wantPath: "features[0].properties.Country"},
		{name: "latitude out of range", input: collection(feature(`"0001"`, "England", "1", "91")), wantErr: ErrInvalidCoordinate, wantPath: "features[0].geometry.coordinates"},
		{name: "longitude out of range", input: collection(feature(`"0001"`, "England", "-180.5", "51")), wantErr: ErrInvalidCoordinate, wantPath: "features[0].geometry.coordinates"},
		{
			name:     "duplicate id",
			input:    collection(feature(`"0001"`, "England", "1", "51"), feature(`"0001"`, "Wales", "-3", "52")),
			wantErr:  ErrMalformedPayload,
			wantPath: "features[1].properties.Id",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := StationsFromReader(strings.NewReader(tt.input))
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, pe.Path)
			}
		})
	}
}

func TestCountryText(t *testing.T) {
	t.Parallel()

	for c, name := range countryNames {
		text, err := c.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		var back Country
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	_, err := Country(0).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestCoordinatesString(t *testing.T) {
	t.Parallel()

	c := Coordinates{Latitude: 51.333333, Longitude: 1.416666}
	assert.Equal(t, "51°19′59″N 1°24′59″E", c.String())

	c = Coordinates{Latitude: 49.75, Longitude: -2.5}
	assert.Equal(t, "49°45′00″N 2°30′00″W", c.String())
}

func TestStationsSortedByID(t *testing.T) {
	t.Parallel()

	in := []Station{{ID: "1603"}, {ID: "0256"}, {ID: "0297A"}, {ID: "0297"}}
	sorted := StationsSortedByID(in)

	ids := make([]StationID, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ID
	}
	assert.Equal(t, []StationID{"0256", "0297", "0297A", "1603"}, ids)
	assert.Equal(t, StationID("1603"), in[0].ID, "input order untouched")
}
