package uktides

import (
	"errors"
	"sync"
	"time"

	// Embed the zone database so London rules do not depend on the host.
	_ "time/tzdata"
)

// ReferenceZone is the civil timezone every parsed timestamp is expressed in.
const ReferenceZone = "Europe/London"

// naiveLayout is how the service writes zone-less wall clock times. Parsing
// also accepts a fractional second after the seconds field.
const naiveLayout = "2006-01-02T15:04:05"

var loadReferenceZone = sync.OnceValues(func() (*time.Location, error) {
	return time.LoadLocation(ReferenceZone)
})

// Location returns the Europe/London location used for all model timestamps.
func Location() *time.Location {
	loc, err := loadReferenceZone()
	if err != nil {
		// Unreachable with time/tzdata linked in.
		panic("uktides: loading " + ReferenceZone + ": " + err.Error())
	}
	return loc
}

// NormalizeTimestamp converts a timestamp as written by the service into
// London civil time, truncated to whole seconds.
//
// Timestamps with a "Z" or numeric offset are absolute instants and are
// simply shifted into London. Zone-naive timestamps are read as London wall
// clock time: when the wall clock occurs twice (clocks going back) the
// earlier instant wins, and when it never occurs (clocks going forward) the
// result is an ErrAmbiguousTime error.
func NormalizeTimestamp(s string) (time.Time, error) {
	loc := Location()
	if s == "" {
		return time.Time{}, &ParseError{Kind: ErrInvalidTimestamp, Err: errors.New("empty timestamp")}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Truncate(time.Second).In(loc), nil
	}

	wall, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Kind: ErrInvalidTimestamp, Value: s, Err: err}
	}
	t, ok := resolveWallClock(wall.Truncate(time.Second), loc)
	if !ok {
		return time.Time{}, &ParseError{Kind: ErrAmbiguousTime, Value: s,
			Err: errors.New("wall clock time skipped by a daylight saving transition")}
	}
	return t, nil
}

// resolveWallClock finds the instants whose wall clock in loc matches the
// fields of wall (a UTC value used only as a field container) and returns
// the earliest. ok is false when no instant matches.
func resolveWallClock(wall time.Time, loc *time.Location) (time.Time, bool) {
	var (
		best  time.Time
		found bool
		seen  = make(map[int]bool, 2)
	)
	// Offsets in force a day either side cover both sides of any transition.
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, offset := wall.Add(probe).In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		candidate := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if !sameWallClock(candidate, wall) {
			continue
		}
		if !found || candidate.Before(best) {
			best, found = candidate, true
		}
	}
	return best, found
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
