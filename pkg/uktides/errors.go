package uktides

import (
	"errors"
	"fmt"
)

// Error kinds returned by the parsers. Match them with errors.Is; the
// concrete error is always a *ParseError carrying the location of the
// offending value.
var (
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrUnknownCountry    = errors.New("unknown country")
	ErrUnknownEventType  = errors.New("unknown tidal event type")
	ErrUnknownLunarPhase = errors.New("unknown lunar phase")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrAmbiguousTime     = errors.New("ambiguous local time")
)

// ErrEventsOutOfOrder is returned by TidePredictions.Validate.
var ErrEventsOutOfOrder = errors.New("tidal events out of chronological order")

// ParseError describes why a payload was rejected.
type ParseError struct {
	Kind  error  // one of the Err* kinds above
	Path  string // JSON path of the offending value, e.g. "features[3].properties.Country"
	Value string // offending raw value, if any
	Err   error  // underlying decoder error, if any
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func malformed(path string, err error) *ParseError {
	return &ParseError{Kind: ErrMalformedPayload, Path: path, Err: err}
}

func missing(path string) *ParseError {
	return &ParseError{Kind: ErrMalformedPayload, Path: path, Err: errors.New("required field missing")}
}

// withPath prefixes the path of a nested ParseError.
func withPath(prefix string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		cp := *pe
		if cp.Path == "" {
			cp.Path = prefix
		} else {
			cp.Path = prefix + "." + cp.Path
		}
		return &cp
	}
	return malformed(prefix, err)
}
