// zones/envelope.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"fmt"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"
)

// EnvelopePoints is the number of positions of an envelope ring,
// including the closing one.
const EnvelopePoints = aviation.RangeCurveSamples + 1

// Envelope is the area from which an aircraft at a given altitude can
// still glide to a location and land there.
type Envelope struct {
	LocationID string
	Category   RiskCategory
	Ring       geometry.Ring
}

// BuildEnvelope computes the reachability envelope of a location for the
// given aircraft and altitude in meters.
//
// The envelope is first laid out with the landing run pointing north.
// The front half of the range curve is centered one turn radius short of
// the approach end. The back half is centered on the last point where a
// landing can still be started; for reversible locations it is the front
// half mirrored to the far end instead. The ring is then rotated into
// place about the approach end.
func (e *Engine) BuildEnvelope(loc aviation.Location, ac aviation.Aircraft, altitude float64) (Envelope, error) {
	fail := func(err error) (Envelope, error) {
		return Envelope{}, &ComputationError{LocationID: loc.ID, LocationName: loc.Name, Err: err}
	}

	if !math.IsFinite(altitude) || altitude < 0 {
		return fail(fmt.Errorf("%f: %w", altitude, ErrInvalidAltitude))
	}
	perf := ac.Performance
	if err := perf.Validate(); err != nil {
		return fail(fmt.Errorf("%s: %w", ac.ID, err))
	}

	headroom, err := loc.Headroom(ac.ID)
	if err != nil {
		return fail(err)
	}
	required, err := perf.LandingDistanceOn(loc.Surface)
	if err != nil {
		return fail(err)
	}

	k := e.Kernel
	offset := perf.TurnRadius
	approachEnd := loc.ApproachEnd()
	center := k.RhumbDestination(approachEnd, offset/1000, 180)
	inset := max(0, loc.Length-required)

	points := make(geometry.Ring, 0, EnvelopePoints)
	project := func(from math.Point2LL, s aviation.RangeSample, bearingOffset float64) error {
		d := s.Distance(altitude)
		if !math.IsFinite(d) || d <= 0 {
			return fmt.Errorf("range %.1fm at %.0fm altitude: %w", d, altitude, geometry.ErrDegenerateGeometry)
		}
		points = append(points, k.RhumbDestination(from, d/1000, s.BearingDegrees()+bearingOffset))
		return nil
	}

	for _, s := range perf.FrontHalf() {
		if err := project(center, s, 0); err != nil {
			return fail(err)
		}
	}

	if loc.Reversible {
		mirrorCenter := k.RhumbDestination(center, (2*offset+loc.Length)/1000, 0)
		for _, s := range perf.FrontHalf() {
			if err := project(mirrorCenter, s, 180); err != nil {
				return fail(err)
			}
		}
	} else {
		farPoint := k.RhumbDestination(center, inset/1000, 0)
		for _, s := range perf.BackHalf() {
			if err := project(farPoint, s, 0); err != nil {
				return fail(err)
			}
		}
	}

	points = append(points, points[0])

	ring, err := k.Rotate(points, loc.Bearing, approachEnd)
	if err != nil {
		return fail(err)
	}
	if err := ring.Validate(); err != nil {
		return fail(err)
	}

	cat := e.Config.ClassifyRisk(loc, headroom)
	e.lg.Debug("built envelope", "location", loc.ID, "aircraft", ac.ID, "altitude", altitude,
		"category", cat.String(), "reversible", loc.Reversible,
		"inset", util.Select(loc.Reversible, 0, inset))

	return Envelope{LocationID: loc.ID, Category: cat, Ring: ring}, nil
}
