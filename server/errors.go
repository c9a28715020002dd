// server/errors.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"errors"
	"net/http"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/zones"
)

var (
	ErrBadParameter        = errors.New("Invalid request parameter")
	ErrMissingParameter    = errors.New("Missing request parameter")
	ErrNoLocations         = errors.New("No locations available")
	ErrServerMisconfigured = errors.New("Invalid server configuration")
	ErrUnableToCompute     = errors.New("unable to compute coverage for this aircraft/altitude")
)

// httpError pairs an error with the status code it is reported with and
// the label used for it in the failure metrics.
type httpError struct {
	status int
	reason string
}

func classifyError(err error) httpError {
	switch {
	case errors.Is(err, aviation.ErrUnknownAircraft), errors.Is(err, aviation.ErrUnknownLocation),
		errors.Is(err, ErrNoLocations):
		return httpError{status: http.StatusNotFound, reason: "not_found"}
	case errors.Is(err, ErrBadParameter), errors.Is(err, ErrMissingParameter),
		errors.Is(err, zones.ErrInvalidAltitude):
		return httpError{status: http.StatusBadRequest, reason: "bad_request"}
	case errors.Is(err, aviation.ErrMissingPerformance):
		return httpError{status: http.StatusUnprocessableEntity, reason: "missing_performance"}
	case errors.Is(err, aviation.ErrInvalidRangeCurve):
		return httpError{status: http.StatusUnprocessableEntity, reason: "invalid_range_curve"}
	case errors.Is(err, geometry.ErrDegenerateGeometry):
		return httpError{status: http.StatusUnprocessableEntity, reason: "degenerate_geometry"}
	default:
		return httpError{status: http.StatusInternalServerError, reason: "internal"}
	}
}

// clientMessage returns the message reported to the client; computation
// failures get a generic message and the details only go to the log.
func clientMessage(err error, he httpError) string {
	switch he.status {
	case http.StatusUnprocessableEntity:
		return ErrUnableToCompute.Error()
	case http.StatusInternalServerError:
		return http.StatusText(http.StatusInternalServerError)
	default:
		return err.Error()
	}
}
