package uktides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func london(t *testing.T, year int, month time.Month, day, hour, min, sec int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, sec, 0, Location())
}

func TestTidesFromReader(t *testing.T) {
	t.Parallel()

	footer := `High waters - important note. The high water duration can occur over an extended time period, i.e. a "high water stand". The predictions give the time and height of high water corresponding to the highest point.`
	want := &TidePredictions{
		TidalEvents: []TidalEvent{
			{DateTime: london(t, 2025, 8, 17, 6, 14, 18), Type: HighWater, Height: 3.5317316090102},
			{DateTime: london(t, 2025, 8, 17, 11, 48, 32), Type: LowWater, Height: 1.5415957943340564},
		},
		Heights: NewHeightSeries([]HeightSample{
			{DateTime: london(t, 2025, 8, 18, 0, 0, 0), Height: 1.657104},
			{DateTime: london(t, 2025, 8, 18, 0, 30, 0), Height: 1.599734},
		}),
		LunarPhases: []LunarPhase{
			{DateTime: london(t, 2025, 8, 23, 7, 6, 0), Phase: NewMoon},
		},
		FooterNote: &footer,
	}

	got, err := TidesFromReader(bytes.NewReader(readFixture(t, "tides.json")))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("predictions mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, got.StationID)
	require.NoError(t, got.Validate())
}

func TestTidesForStation(t *testing.T) {
	t.Parallel()

	got, err := TidesForStation("0102", bytes.NewReader(readFixture(t, "tides.json")))
	require.NoError(t, err)
	assert.Equal(t, StationID("0102"), got.StationID)
}

func TestTidesWithoutHeights(t *testing.T) {
	t.Parallel()

	got, err := TidesFromReader(bytes.NewReader(readFixture(t, "tides_no_heights.json")))
	require.NoError(t, err)

	assert.False(t, got.Heights.Available())
	assert.Nil(t, got.Heights.Samples())
	assert.Nil(t, got.FooterNote)
	assert.Equal(t, "[ heights unavailable ]", got.Heights.String())

	require.Len(t, got.TidalEvents, 2)
	// 01:30 occurs twice on 26 October; the BST reading is kept.
	assert.True(t, got.TidalEvents[0].DateTime.Equal(time.Date(2025, 10, 26, 0, 30, 0, 0, time.UTC)))
	assert.True(t, got.TidalEvents[1].ApproximateHeight)
	assert.False(t, got.TidalEvents[1].ApproximateTime)
	assert.Equal(t, FirstQuarter, got.LunarPhases[0].Phase)
	require.NoError(t, got.Validate())
}

func TestHeightAvailability(t *testing.T) {
	t.Parallel()

	base := `"tidalEventList": [], "lunarPhaseList": []`
	tests := []struct {
		name          string
		input         string
		wantAvailable bool
		wantLen       int
	}{
		{name: "field absent", input: `{` + base + `}`, wantAvailable: false},
		{name: "field null", input: `{` + base + `, "tidalHeightOccurrenceList": null}`, wantAvailable: false},
		{name: "empty list", input: `{` + base + `, "tidalHeightOccurrenceList": []}`, wantAvailable: true, wantLen: 0},
		{
			name:          "one sample",
			input:         `{` + base + `, "tidalHeightOccurrenceList": [{"dateTime": "2025-08-18T00:00:00Z", "height": 1.2}]}`,
			wantAvailable: true,
			wantLen:       1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TidesFromReader(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, got.Heights.Available())
			assert.Equal(t, tt.wantLen, got.Heights.Len())
			if tt.wantAvailable {
				assert.NotNil(t, got.Heights.Samples())
			}
		})
	}
}

func TestTidesIdempotent(t *testing.T) {
	t.Parallel()

	data := readFixture(t, "tides.json")
	a, err := TidesFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	b, err := TidesFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("second parse differs:\n%s", diff)
	}
}

func TestApproximateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "absent", value: "", want: false},
		{name: "null", value: `null`, want: false},
		{name: "boolean true", value: `true`, want: true},
		{name: "boolean false", value: `false`, want: false},
		{name: "string true", value: `"true"`, want: true},
		{name: "string false", value: `"False"`, want: false},
		{name: "empty string", value: `""`, want: false},
		{name: "Y", value: `"Y"`, want: true},
		{name: "N", value: `"N"`, want: false},
		{name: "free text", value: `"Approx"`, want: true},
		{name: "number", value: `1`, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags := ""
			if tt.value != "" {
				flags = `, "isApproximateHeight": ` + tt.value + `, "isApproximateTime": ` + tt.value
			}
			input := `{"tidalEventList": [{"dateTime": "2025-08-17T06:14:18", "eventType": 0, "height": 1` + flags + `}], "lunarPhaseList": []}`

			got, err := TidesFromReader(strings.NewReader(input))
			require.NoError(t, err)
			require.Len(t, got.TidalEvents, 1)
			assert.Equal(t, tt.want, got.TidalEvents[0].ApproximateHeight)
			assert.Equal(t, tt.want, got.TidalEvents[0].ApproximateTime)
		})
	}
}

func TestConcurrentParses(t *testing.T) {
	t.Parallel()

	tideData := readFixture(t, "tides.json")
	stationData := readFixture(t, "stations.json")
	wantTides, err := TidesFromReader(bytes.NewReader(tideData))
	require.NoError(t, err)
	wantStations, err := StationsFromReader(bytes.NewReader(stationData))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := TidesFromReader(bytes.NewReader(tideData))
			if err != nil {
				errs <- err
				return
			}
			if diff := cmp.Diff(wantTides, got); diff != "" {
				errs <- fmt.Errorf("tides differ:\n%s", diff)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := StationsFromReader(bytes.NewReader(stationData))
			if err != nil {
				errs <- err
				return
			}
			if diff := cmp.Diff(wantStations, got); diff != "" {
				errs <- fmt.Errorf("stations differ:\n%s", diff)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestTidesFromReaderErrors(t *testing.T) {
	t.Parallel()

	event := func(dateTime string, eventType string) string {
		return `{"dateTime": "` + dateTime + `", "eventType": ` + eventType + `, "height": 2.1}`
	}
	payload := func(events, phases string) string {
		return `{"footerNote": "note", "tidalEventList": [` + events + `], "lunarPhaseList": [` + phases + `]}`
	}
	okEvent := event("2025-08-17T06:14:18", "0")
	okPhase := `{"dateTime": "2025-08-23T07:06:00", "lunarPhaseType": 1}`

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantPath string
	}{
		{name: "not json", input: `tides`, wantErr: ErrMalformedPayload},
		{name: "array instead of object", input: `[]`, wantErr: ErrMalformedPayload},
		{name: "missing event list", input: `{"lunarPhaseList": []}`, wantErr: ErrMalformedPayload, wantPath: "tidalEventList"},
		{name: "null event list", input: `{"tidalEventList": null, "lunarPhaseList": []}`, wantErr: ErrMalformedPayload, wantPath: "tidalEventList"},
		{name: "missing lunar list", input: `{"tidalEventList": []}`, wantErr: ErrMalformedPayload, wantPath: "lunarPhaseList"},
		{name: "unknown event type", input: payload(event("2025-08-17T06:14:18", "2"), okPhase), wantErr: ErrUnknownEventType, wantPath: "tidalEventList[0].eventType"},
		{name: "string event type", input: payload(event("2025-08-17T06:14:18", `"H"`), okPhase), wantErr: ErrMalformedPayload, wantPath: "tidalEventList[0].eventType"},
		{name: "missing event height", input: payload(`{"dateTime": "2025-08-17T06:14:18", "eventType": 0}`, okPhase), wantErr: ErrMalformedPayload, wantPath: "tidalEventList[0].height"},
		{name: "bad event time", input: payload(event("17/08/2025 06:14", "0"), okPhase), wantErr: ErrInvalidTimestamp, wantPath: "tidalEventList[0].dateTime"},
		{name: "event in spring forward gap", input: payload(okEvent+","+event("2025-03-30T01:15:00", "1"), okPhase), wantErr: ErrAmbiguousTime, wantPath: "tidalEventList[1].dateTime"},
		{name: "unknown lunar phase", input: payload(okEvent, `{"dateTime": "2025-08-23T07:06:00", "lunarPhaseType": 5}`), wantErr: ErrUnknownLunarPhase, wantPath: "lunarPhaseList[0].lunarPhaseType"},
		{name: "lunar phase zero", input: payload(okEvent, `{"dateTime": "2025-08-23T07:06:00", "lunarPhaseType": 0}`), wantErr: ErrUnknownLunarPhase, wantPath: "lunarPhaseList[0].lunarPhaseType"},
		{name: "heights not a list", input: `{"tidalEventList": [], "lunarPhaseList": [], "tidalHeightOccurrenceList": 4}`, wantErr: ErrMalformedPayload, wantPath: "tidalHeightOccurrenceList"},
		{
			name:     "height sample missing height",
			input:    `{"tidalEventList": [], "lunarPhaseList": [], "tidalHeightOccurrenceList": [{"dateTime": "2025-08-18T00:00:00Z"}]}`,
			wantErr:  ErrMalformedPayload,
			wantPath: "tidalHeightOccurrenceList[0].height",
		},
		{
			name:     "approximate flag is a list",
			input:    payload(`{"dateTime": "2025-08-17T06:14:18", "eventType": 0, "height": 1, "isApproximateTime": ["Y"]}`, okPhase),
			wantErr:  ErrMalformedPayload,
			wantPath: "tidalEventList[0].isApproximateTime",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TidesFromReader(strings.NewReader(tt.input))
			assert.Nil(t, got, "no partial model on error")
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

func TestValidateMonotonic(t *testing.T) {
	t.Parallel()

	input := `{"tidalEventList": [
		{"dateTime": "2025-08-17T11:48:32", "eventType": 1, "height": 1.5},
		{"dateTime": "2025-08-17T06:14:18", "eventType": 0, "height": 3.5}
	], "lunarPhaseList": []}`

	got, err := TidesFromReader(strings.NewReader(input))
	require.NoError(t, err, "the parser keeps service order")
	assert.True(t, got.TidalEvents[0].DateTime.After(got.TidalEvents[1].DateTime))
	assert.ErrorIs(t, got.Validate(), ErrEventsOutOfOrder)

	equal := `{"tidalEventList": [
		{"dateTime": "2025-08-17T06:14:18", "eventType": 0, "height": 3.5},
		{"dateTime": "2025-08-17T05:14:18Z", "eventType": 0, "height": 3.5}
	], "lunarPhaseList": []}`
	got, err = TidesFromReader(strings.NewReader(equal))
	require.NoError(t, err)
	assert.NoError(t, got.Validate())
}

func TestPredictionsJSON(t *testing.T) {
	t.Parallel()

	parsed, err := TidesForStation("0102", bytes.NewReader(readFixture(t, "tides_no_heights.json")))
	require.NoError(t, err)

	data, err := json.Marshal(parsed)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "0102", generic["stationId"])
	assert.Nil(t, generic["heights"])
	assert.NotContains(t, generic, "footerNote")

	events := generic["tidalEvents"].([]any)
	first := events[0].(map[string]any)
	assert.Equal(t, "LOW", first["type"])
	assert.Equal(t, "2025-10-26T01:30:00+01:00", first["dateTime"])

	var back TidePredictions
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.Heights.Available())
	assert.Equal(t, LowWater, back.TidalEvents[0].Type)
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "High tide", HighWater.String())
	assert.Equal(t, "Low tide", LowWater.String())
	assert.Equal(t, "Full moon", FullMoon.String())
	assert.Equal(t, "LunarPhaseType(9)", LunarPhaseType(9).String())

	var p LunarPhaseType
	require.NoError(t, p.UnmarshalText([]byte("LAST_QUARTER")))
	assert.Equal(t, LastQuarter, p)
	assert.ErrorIs(t, p.UnmarshalText([]byte("BLUE_MOON")), ErrUnknownLunarPhase)
}
