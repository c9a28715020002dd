// aviation/location.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Location is a surveyed off-airport landing site: a straight landing run
// from Start to End.
type Location struct {
	ID   string
	Name string

	Start, End math.Point2LL
	// Bearing of the landing run from Start to End, in radians clockwise
	// from true north.
	Bearing float64
	// Set if and only if the location is Reversible.
	ReverseBearing *float64
	// Usable length in meters.
	Length     float64
	Reversible bool

	Surface       SurfaceType
	Usage         UsageType
	HumanPresence HumanPresence

	Elevation  float64 // meters MSL, 0 if unknown
	SurveyDate string
	Remarks    string

	// Landing headroom ratio by aircraft id; see HeadroomRatio.
	HeadroomRatios map[string]float64
}

// ApproachEnd returns the point where a landing starts.
func (l Location) ApproachEnd() math.Point2LL {
	return l.Start
}

// Centerline returns the line from Start to End.
func (l Location) Centerline() []math.Point2LL {
	return []math.Point2LL{l.Start, l.End}
}

func (l Location) Midpoint() math.Point2LL {
	return math.Mid2LL(l.Start, l.End)
}

// Headroom returns the landing headroom ratio for the given aircraft.
func (l Location) Headroom(aircraftID string) (float64, error) {
	h, ok := l.HeadroomRatios[aircraftID]
	if !ok {
		return 0, fmt.Errorf("%s: no landing headroom for aircraft %q: %w", l.Name, aircraftID,
			ErrMissingPerformance)
	}
	return h, nil
}

// HeadroomRatio returns the fraction of the required landing distance
// that is available in addition to the required distance itself;
// negative values mean the landing run is too short.
func HeadroomRatio(length, required float64) float64 {
	return (length - required) / required
}

// LocationID returns a stable identifier derived from the location's
// coordinates.
func LocationID(start, end math.Point2LL) string {
	var b []byte
	for _, v := range []float64{start[0], start[1], end[0], end[1]} {
		b = binary.LittleEndian.AppendUint64(b, gomath.Float64bits(v))
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// coordinateYAML is a position written either as a [lat, lon] pair or as
// a string that math.ParseLatLong understands.
type coordinateYAML math.Point2LL

func (c *coordinateYAML) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var v []float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		if len(v) != 2 {
			return fmt.Errorf("line %d: coordinate must have 2 values, got %d", node.Line, len(v))
		}
		*c = coordinateYAML{v[1], v[0]}
		return nil

	case yaml.ScalarNode:
		p, err := math.ParseLatLong([]byte(node.Value))
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = coordinateYAML(p)
		return nil

	default:
		return fmt.Errorf("line %d: invalid coordinate", node.Line)
	}
}

type locationYAML struct {
	Name          string        `yaml:"name"`
	Reversible    bool          `yaml:"reversible"`
	Surface       SurfaceType   `yaml:"surface"`
	HumanPresence HumanPresence `yaml:"humanPresence"`
	Usage         UsageType     `yaml:"usage"`
	Coordinates   struct {
		Start *coordinateYAML `yaml:"start"`
		End   *coordinateYAML `yaml:"end"`
	} `yaml:"coordinates"`
	Elevation  float64 `yaml:"elevation"`
	SurveyDate string  `yaml:"surveyDate"`
	Remarks    string  `yaml:"remarks"`
}

func (ly locationYAML) location() Location {
	var start, end math.Point2LL
	if ly.Coordinates.Start != nil {
		start = math.Point2LL(*ly.Coordinates.Start)
	}
	if ly.Coordinates.End != nil {
		end = math.Point2LL(*ly.Coordinates.End)
	}

	loc := Location{
		ID:             LocationID(start, end),
		Name:           ly.Name,
		Start:          start,
		End:            end,
		Bearing:        math.Radians(math.RhumbBearing(start, end)),
		Length:         math.DistanceMeters(start, end),
		Reversible:     ly.Reversible,
		Surface:        ly.Surface,
		Usage:          ly.Usage,
		HumanPresence:  ly.HumanPresence,
		Elevation:      ly.Elevation,
		SurveyDate:     ly.SurveyDate,
		Remarks:        ly.Remarks,
		HeadroomRatios: make(map[string]float64),
	}
	if loc.Reversible {
		rb := math.Radians(math.RhumbBearing(end, start))
		loc.ReverseBearing = &rb
	}
	return loc
}
