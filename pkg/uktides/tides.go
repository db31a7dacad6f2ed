package uktides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Metres is a tide height in metres.
type Metres float64

// EventType is either high or low water.
type EventType int

const (
	HighWater EventType = iota + 1
	LowWater
)

// The service encodes high water as 0 and low water as 1.
var eventTypeCodes = map[int]EventType{
	0: HighWater,
	1: LowWater,
}

func (t EventType) String() string {
	switch t {
	case HighWater:
		return "High tide"
	case LowWater:
		return "Low tide"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	switch t {
	case HighWater:
		return []byte("HIGH"), nil
	case LowWater:
		return []byte("LOW"), nil
	}
	return nil, &ParseError{Kind: ErrUnknownEventType, Value: t.String()}
}

func (t *EventType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "HIGH":
		*t = HighWater
	case "LOW":
		*t = LowWater
	default:
		return &ParseError{Kind: ErrUnknownEventType, Value: string(text)}
	}
	return nil
}

// LunarPhaseType is a named phase of the moon. The values match the codes
// used by the service.
type LunarPhaseType int

const (
	NewMoon LunarPhaseType = iota + 1
	FirstQuarter
	FullMoon
	LastQuarter
)

var lunarPhaseNames = map[LunarPhaseType][2]string{
	NewMoon:      {"New moon", "NEW_MOON"},
	FirstQuarter: {"First quarter", "FIRST_QUARTER"},
	FullMoon:     {"Full moon", "FULL_MOON"},
	LastQuarter:  {"Last quarter", "LAST_QUARTER"},
}

func (p LunarPhaseType) String() string {
	if n, ok := lunarPhaseNames[p]; ok {
		return n[0]
	}
	return fmt.Sprintf("LunarPhaseType(%d)", int(p))
}

func (p LunarPhaseType) MarshalText() ([]byte, error) {
	if n, ok := lunarPhaseNames[p]; ok {
		return []byte(n[1]), nil
	}
	return nil, &ParseError{Kind: ErrUnknownLunarPhase, Value: p.String()}
}

func (p *LunarPhaseType) UnmarshalText(text []byte) error {
	for phase, n := range lunarPhaseNames {
		if n[1] == string(text) {
			*p = phase
			return nil
		}
	}
	return &ParseError{Kind: ErrUnknownLunarPhase, Value: string(text)}
}

// TidalEvent is a single high or low water.
type TidalEvent struct {
	DateTime          time.Time `json:"dateTime"`
	Type              EventType `json:"type"`
	Height            Metres    `json:"height"`
	ApproximateHeight bool      `json:"approximateHeight"`
	ApproximateTime   bool      `json:"approximateTime"`
}

// HeightSample is the predicted height at one instant of a height series.
type HeightSample struct {
	DateTime time.Time `json:"dateTime"`
	Height   Metres    `json:"height"`
}

// HeightSeries is the optional half-hourly height prediction. Stations
// without continuous heights have an unavailable series, which is distinct
// from an available series with no samples.
type HeightSeries struct {
	samples   []HeightSample
	available bool
}

// HeightsUnavailable returns the series of a station that publishes none.
func HeightsUnavailable() HeightSeries {
	return HeightSeries{}
}

// NewHeightSeries returns an available series holding a copy of samples.
func NewHeightSeries(samples []HeightSample) HeightSeries {
	owned := make([]HeightSample, len(samples))
	copy(owned, samples)
	return HeightSeries{samples: owned, available: true}
}

func (h HeightSeries) Available() bool {
	return h.available
}

// Samples returns a copy of the samples, or nil when unavailable.
func (h HeightSeries) Samples() []HeightSample {
	if !h.available {
		return nil
	}
	return slices.Clone(h.samples)
}

func (h HeightSeries) Len() int {
	return len(h.samples)
}

// Equal reports whether both series have the same availability and samples.
func (h HeightSeries) Equal(o HeightSeries) bool {
	return h.available == o.available && slices.EqualFunc(h.samples, o.samples, func(a, b HeightSample) bool {
		return a.DateTime.Equal(b.DateTime) && a.Height == b.Height
	})
}

func (h HeightSeries) String() string {
	if !h.available {
		return "[ heights unavailable ]"
	}
	return fmt.Sprintf("[ %d heights ]", len(h.samples))
}

// MarshalJSON encodes an unavailable series as null.
func (h HeightSeries) MarshalJSON() ([]byte, error) {
	if !h.available {
		return []byte("null"), nil
	}
	return json.Marshal(h.samples)
}

func (h *HeightSeries) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = HeightsUnavailable()
		return nil
	}
	var samples []HeightSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return err
	}
	*h = NewHeightSeries(samples)
	return nil
}

// LunarPhase marks the moment of a lunar phase.
type LunarPhase struct {
	DateTime time.Time      `json:"dateTime"`
	Phase    LunarPhaseType `json:"phase"`
}

// TidePredictions is everything the prediction endpoint returns for one
// station.
type TidePredictions struct {
	// StationID is empty unless the predictions were parsed with
	// TidesForStation.
	StationID   StationID    `json:"stationId,omitempty"`
	TidalEvents []TidalEvent `json:"tidalEvents"`
	Heights     HeightSeries `json:"heights"`
	LunarPhases []LunarPhase `json:"lunarPhases"`
	// FooterNote is usually a warning that high water can last for an
	// extended period. Nil when the service sent none.
	FooterNote *string `json:"footerNote,omitempty"`
}

// Validate checks the tidal events are in non-decreasing time order. The
// parser keeps the service's order, so this is the place to assert it.
func (p *TidePredictions) Validate() error {
	for i := 1; i < len(p.TidalEvents); i++ {
		prev, cur := p.TidalEvents[i-1].DateTime, p.TidalEvents[i].DateTime
		if cur.Before(prev) {
			return fmt.Errorf("%w: event %d at %s precedes event %d at %s",
				ErrEventsOutOfOrder, i, cur.Format(time.RFC3339), i-1, prev.Format(time.RFC3339))
		}
	}
	return nil
}

type predictionsWire struct {
	FooterNote                *string            `json:"footerNote"`
	LunarPhaseList            *[]json.RawMessage `json:"lunarPhaseList"`
	TidalEventList            *[]json.RawMessage `json:"tidalEventList"`
	TidalHeightOccurrenceList json.RawMessage    `json:"tidalHeightOccurrenceList"`
}

type tidalEventWire struct {
	DateTime            *string         `json:"dateTime"`
	EventType           *int            `json:"eventType"`
	Height              *float64        `json:"height"`
	IsApproximateHeight json.RawMessage `json:"isApproximateHeight"`
	IsApproximateTime   json.RawMessage `json:"isApproximateTime"`
}

type heightSampleWire struct {
	DateTime *string  `json:"dateTime"`
	Height   *float64 `json:"height"`
}

type lunarPhaseWire struct {
	DateTime       *string `json:"dateTime"`
	LunarPhaseType *int    `json:"lunarPhaseType"`
}

// TidesFromReader decodes the JSON returned by the prediction endpoint.
// Events, samples and phases keep the order the service sent them in.
func TidesFromReader(r io.Reader) (*TidePredictions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed("", fmt.Errorf("reading predictions: %w", err))
	}

	var wire predictionsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, malformed(typeErrorPath(err), err)
	}
	if wire.TidalEventList == nil {
		return nil, missing("tidalEventList")
	}
	if wire.LunarPhaseList == nil {
		return nil, missing("lunarPhaseList")
	}

	events := make([]TidalEvent, 0, len(*wire.TidalEventList))
	for i, raw := range *wire.TidalEventList {
		ev, err := decodeTidalEvent(raw)
		if err != nil {
			return nil, withPath(fmt.Sprintf("tidalEventList[%d]", i), err)
		}
		events = append(events, ev)
	}

	heights, err := decodeHeights(wire.TidalHeightOccurrenceList)
	if err != nil {
		return nil, err
	}

	phases := make([]LunarPhase, 0, len(*wire.LunarPhaseList))
	for i, raw := range *wire.LunarPhaseList {
		ph, err := decodeLunarPhase(raw)
		if err != nil {
			return nil, withPath(fmt.Sprintf("lunarPhaseList[%d]", i), err)
		}
		phases = append(phases, ph)
	}

	return &TidePredictions{
		TidalEvents: events,
		Heights:     heights,
		LunarPhases: phases,
		FooterNote:  wire.FooterNote,
	}, nil
}

// TidesForStation is TidesFromReader with the station back-reference set.
func TidesForStation(id StationID, r io.Reader) (*TidePredictions, error) {
	p, err := TidesFromReader(r)
	if err != nil {
		return nil, err
	}
	p.StationID = id
	return p, nil
}

func decodeTidalEvent(raw json.RawMessage) (TidalEvent, error) {
	var w tidalEventWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return TidalEvent{}, malformed(typeErrorPath(err), err)
	}
	switch {
	case w.DateTime == nil:
		return TidalEvent{}, missing("dateTime")
	case w.EventType == nil:
		return TidalEvent{}, missing("eventType")
	case w.Height == nil:
		return TidalEvent{}, missing("height")
	}

	at, err := NormalizeTimestamp(*w.DateTime)
	if err != nil {
		return TidalEvent{}, withPath("dateTime", err)
	}
	typ, ok := eventTypeCodes[*w.EventType]
	if !ok {
		return TidalEvent{}, &ParseError{Kind: ErrUnknownEventType, Path: "eventType", Value: strconv.Itoa(*w.EventType)}
	}
	approxHeight, err := decodeFlag(w.IsApproximateHeight)
	if err != nil {
		return TidalEvent{}, withPath("isApproximateHeight", err)
	}
	approxTime, err := decodeFlag(w.IsApproximateTime)
	if err != nil {
		return TidalEvent{}, withPath("isApproximateTime", err)
	}

	return TidalEvent{
		DateTime:          at,
		Type:              typ,
		Height:            Metres(*w.Height),
		ApproximateHeight: approxHeight,
		ApproximateTime:   approxTime,
	}, nil
}

// decodeHeights treats a missing or null list as an unavailable series.
func decodeHeights(raw json.RawMessage) (HeightSeries, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return HeightsUnavailable(), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return HeightSeries{}, malformed("tidalHeightOccurrenceList", err)
	}
	samples := make([]HeightSample, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("tidalHeightOccurrenceList[%d]", i)
		var w heightSampleWire
		if err := json.Unmarshal(item, &w); err != nil {
			return HeightSeries{}, malformed(path, err)
		}
		if w.DateTime == nil {
			return HeightSeries{}, missing(path + ".dateTime")
		}
		if w.Height == nil {
			return HeightSeries{}, missing(path + ".height")
		}
		at, err := NormalizeTimestamp(*w.DateTime)
		if err != nil {
			return HeightSeries{}, withPath(path+".dateTime", err)
		}
		samples = append(samples, HeightSample{DateTime: at, Height: Metres(*w.Height)})
	}
	return HeightSeries{samples: samples, available: true}, nil
}

func decodeLunarPhase(raw json.RawMessage) (LunarPhase, error) {
	var w lunarPhaseWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return LunarPhase{}, malformed(typeErrorPath(err), err)
	}
	if w.DateTime == nil {
		return LunarPhase{}, missing("dateTime")
	}
	if w.LunarPhaseType == nil {
		return LunarPhase{}, missing("lunarPhaseType")
	}

	at, err := NormalizeTimestamp(*w.DateTime)
	if err != nil {
		return LunarPhase{}, withPath("dateTime", err)
	}
	phase := LunarPhaseType(*w.LunarPhaseType)
	if _, ok := lunarPhaseNames[phase]; !ok {
		return LunarPhase{}, &ParseError{Kind: ErrUnknownLunarPhase, Path: "lunarPhaseType", Value: strconv.Itoa(*w.LunarPhaseType)}
	}
	return LunarPhase{DateTime: at, Phase: phase}, nil
}

// decodeFlag reads the approximate-height/time markers, which the service
// usually sends as null. The string values are undocumented: anything that
// is not a recognisable false value marks the event as approximate.
func decodeFlag(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	switch v := v.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return false, nil
		}
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
		switch strings.ToLower(v) {
		case "n", "no":
			return false, nil
		}
		return true, nil
	default:
		return false, errors.New("expected a boolean, number, string or null")
	}
}
