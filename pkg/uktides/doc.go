// Package uktides decodes tide predictions published by the UK Hydrographic
// Office EasyTide service.
//
// The package performs no network I/O. StationsListURL and TidePredictionsURL
// give the two endpoints; fetch them with any transport and pass the response
// body to StationsFromReader or TidesFromReader. Every parse is a pure
// function of its input, so parsers may run concurrently without
// coordination.
//
// All timestamps are returned in Europe/London civil time (see
// NormalizeTimestamp). Enumerated codes from the service (countries, event
// types, lunar phases) are closed sets: an unrecognised code is an error
// rather than a silently dropped value, so upstream schema changes surface
// at the parsing boundary.
package uktides
