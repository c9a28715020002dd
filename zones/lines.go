// zones/lines.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
)

// AnnotatedLine is a location's centerline along with its risk rating
// for a particular aircraft.
type AnnotatedLine struct {
	LocationID string
	Name       string
	Category   RiskCategory
	Color      string
	Line       []math.Point2LL
}

// AnnotateCenterlines rates every location that isn't an aerodrome and
// returns its unmodified centerline with the matching display color.
// Aerodromes are left out since maps show them anyway.
func (e *Engine) AnnotateCenterlines(locs []aviation.Location, ac aviation.Aircraft) ([]AnnotatedLine, error) {
	var lines []AnnotatedLine
	for _, loc := range locs {
		if loc.Usage == aviation.Aeronautical {
			continue
		}

		cat, err := e.LocationRisk(loc, ac)
		if err != nil {
			return nil, err
		}
		lines = append(lines, AnnotatedLine{
			LocationID: loc.ID,
			Name:       loc.Name,
			Category:   cat,
			Color:      e.Config.Color(cat),
			Line:       loc.Centerline(),
		})
	}

	e.lg.Debugf("annotated %d of %d centerlines for %s", len(lines), len(locs), ac.ID)

	return lines, nil
}
