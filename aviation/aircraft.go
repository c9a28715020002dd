// aviation/aircraft.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"

	"gopkg.in/yaml.v3"
)

const MetersPerFoot = 0.3048

// RangeCurveSamples is the number of samples a glide range curve has.
const RangeCurveSamples = 36

// GrasGroundRollFactor scales the hard-surface ground roll for landings
// on grass.
const GrasGroundRollFactor = 1.2

// RangeSample is one sample of an aircraft's glide range curve: for the
// given bearing offset the reachable distance grows linearly with
// altitude.
type RangeSample struct {
	Bearing   float64 // radians
	Slope     float64
	Intercept float64 // meters
}

// Distance returns the reachable ground distance in meters when starting
// at the given altitude in meters.
func (s RangeSample) Distance(altitude float64) float64 {
	return s.Slope*altitude + s.Intercept
}

// BearingDegrees returns the sample's bearing offset in degrees.
func (s RangeSample) BearingDegrees() float64 {
	return math.Degrees(s.Bearing)
}

// UnmarshalYAML accepts a sample written as a [bearing, slope, intercept]
// sequence.
func (s *RangeSample) UnmarshalYAML(node *yaml.Node) error {
	var v []float64
	if err := node.Decode(&v); err != nil {
		return err
	}
	if len(v) != 3 {
		return fmt.Errorf("line %d: range sample must have 3 values, got %d: %w", node.Line, len(v),
			ErrInvalidRangeCurve)
	}
	*s = RangeSample{Bearing: v[0], Slope: v[1], Intercept: v[2]}
	return nil
}

func (s RangeSample) MarshalYAML() (any, error) {
	return []float64{s.Bearing, s.Slope, s.Intercept}, nil
}

// LandingPerformance holds the published landing figures.
type LandingPerformance struct {
	// Ground roll required after touchdown to come to a complete stop (ft)
	GroundRoll float64 `yaml:"groundRoll" json:"groundRoll"`
	// Total distance required to clear a 50ft obstacle and come to a
	// full stop (ft)
	TotalDistance float64 `yaml:"totalDistance" json:"totalDistance"`
}

// DistanceOnSurface returns the total landing distance in meters on the
// given surface.
func (lp LandingPerformance) DistanceOnSurface(surface SurfaceType) float64 {
	clearance := lp.TotalDistance - lp.GroundRoll
	roll := lp.GroundRoll
	if surface == Gras {
		roll *= GrasGroundRollFactor
	}
	return (clearance + roll) * MetersPerFoot
}

// Performance is the derived performance data used to build
// reachability envelopes.
type Performance struct {
	// Turn radius while gliding, in meters.
	TurnRadius float64
	// Always RangeCurveSamples entries in order; the first half covers
	// the approach end.
	RangeCurve []RangeSample
	// Required landing distance in meters by surface.
	LandingDistance map[SurfaceType]float64
}

// LandingDistanceOn returns the required landing distance on the given
// surface or ErrMissingPerformance if it isn't known.
func (p Performance) LandingDistanceOn(surface SurfaceType) (float64, error) {
	d, ok := p.LandingDistance[surface]
	if !ok {
		return 0, fmt.Errorf("landing distance on %s: %w", surface, ErrMissingPerformance)
	}
	return d, nil
}

// FrontHalf returns the samples that describe the reachable area around
// the approach end.
func (p Performance) FrontHalf() []RangeSample {
	return p.RangeCurve[:RangeCurveSamples/2]
}

// BackHalf returns the samples that describe the reachable area beyond
// the far end of the landing run.
func (p Performance) BackHalf() []RangeSample {
	return p.RangeCurve[RangeCurveSamples/2:]
}

// Validate checks that the range curve and turn radius are usable.
func (p Performance) Validate() error {
	if len(p.RangeCurve) != RangeCurveSamples {
		return fmt.Errorf("%d samples, expected %d: %w", len(p.RangeCurve), RangeCurveSamples, ErrInvalidRangeCurve)
	}
	for i, s := range p.RangeCurve {
		if !math.IsFinite(s.Bearing, s.Slope, s.Intercept) {
			return fmt.Errorf("sample %d has non-finite values: %w", i, ErrInvalidRangeCurve)
		}
	}
	if !math.IsFinite(p.TurnRadius) || p.TurnRadius <= 0 {
		return fmt.Errorf("turn radius %f: %w", p.TurnRadius, ErrMissingPerformance)
	}
	return nil
}

type Aircraft struct {
	ID   string
	Name string
	// Maximum takeoff weight in pounds.
	MTOW        float64
	Landing     *LandingPerformance
	Performance Performance
}

// MTOWKilograms returns the maximum takeoff weight in kilograms.
func (ac Aircraft) MTOWKilograms() float64 {
	return ac.MTOW * 0.45359237
}

// aircraftYAML is the on-disk representation of an aircraft.
type aircraftYAML struct {
	ID              string                  `yaml:"id"`
	Name            string                  `yaml:"name"`
	MTOW            float64                 `yaml:"mtow"`
	Landing         *LandingPerformance     `yaml:"landing"`
	LandingDistance map[SurfaceType]float64 `yaml:"landingDistance"`
	Glide           struct {
		TurnRadius float64 `yaml:"turnRadius"`
	} `yaml:"glide"`
	RangeCurve []RangeSample `yaml:"rangeCurve"`
}

func (a aircraftYAML) aircraft() Aircraft {
	ac := Aircraft{
		ID:      a.ID,
		Name:    a.Name,
		MTOW:    a.MTOW,
		Landing: a.Landing,
		Performance: Performance{
			TurnRadius:      a.Glide.TurnRadius,
			RangeCurve:      a.RangeCurve,
			LandingDistance: make(map[SurfaceType]float64),
		},
	}

	if a.Landing != nil {
		for _, s := range []SurfaceType{Asphalt, Gras, Water} {
			ac.Performance.LandingDistance[s] = a.Landing.DistanceOnSurface(s)
		}
	}
	// Explicitly given figures win over derived ones.
	for s, d := range a.LandingDistance {
		ac.Performance.LandingDistance[s] = d
	}
	if ac.Name == "" {
		ac.Name = ac.ID
	}

	return ac
}
