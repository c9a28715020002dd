// zones/compositor.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"
)

// ZoneMap holds the merged reachability area of each risk category. A
// category that covers nothing is absent. The areas of different
// categories do not overlap.
type ZoneMap map[RiskCategory]geometry.Geometry

// Categories returns the categories present in the map, most preferred
// first.
func (z ZoneMap) Categories(cfg Config) []RiskCategory {
	var cats []RiskCategory
	for _, r := range cfg.Precedence {
		if _, ok := z[r]; ok {
			cats = append(cats, r)
		}
	}
	return cats
}

// CompositeZones builds the envelope of every location, merges the
// envelopes of each risk category and then removes from each category
// the area already covered by more preferred ones.
func (e *Engine) CompositeZones(locs []aviation.Location, ac aviation.Aircraft, altitude float64) (ZoneMap, error) {
	start := time.Now()

	byCategory := make(map[RiskCategory][]geometry.Ring)
	for _, loc := range locs {
		env, err := e.BuildEnvelope(loc, ac, altitude)
		if err != nil {
			return nil, err
		}
		byCategory[env.Category] = append(byCategory[env.Category], env.Ring)
	}

	zones := make(ZoneMap)
	for _, r := range e.Config.Precedence {
		rings, ok := byCategory[r]
		if !ok {
			continue
		}

		var g geometry.Geometry
		for _, ring := range rings {
			var err error
			if g, err = e.Kernel.Union(g, geometry.FromRing(ring)); err != nil {
				return nil, err
			}
		}
		zones[r] = g
	}

	// Least preferred first, so that every subtrahend is still the full
	// union of its category; within a category, the closest preferred
	// category is subtracted first.
	prec := e.Config.Precedence
	for i := len(prec) - 1; i > 0; i-- {
		minuend, ok := zones[prec[i]]
		if !ok {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			sub, ok := zones[prec[j]]
			if !ok {
				continue
			}
			var err error
			if minuend, err = e.Kernel.Difference(minuend, sub); err != nil {
				return nil, err
			}
		}
		if minuend.IsEmpty() {
			delete(zones, prec[i])
		} else {
			zones[prec[i]] = minuend
		}
	}

	// A kernel may return an empty union.
	for r, g := range zones {
		if g.IsEmpty() {
			delete(zones, r)
		}
	}

	if e.lg != nil {
		var counts []any
		for _, r := range util.SortedMapKeys(byCategory) {
			counts = append(counts, r.String(), len(byCategory[r]))
		}
		e.lg.Debug("composited zones", "aircraft", ac.ID, "altitude", altitude,
			"locations", len(locs), "envelopes", counts, "categories", len(zones),
			"elapsed", time.Since(start))
	}

	return zones, nil
}
