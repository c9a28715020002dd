// zones/risk.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"fmt"
	"slices"
	"strings"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
)

// RiskCategory rates how an emergency landing at a location is expected
// to turn out.
type RiskCategory int

const (
	// Sufficient landing distance available, no hazards, no people, and
	// no major damage to the aircraft expected.
	Safe RiskCategory = iota
	// Potential damage to the aircraft or bystanders due to a short
	// landing run or people on site.
	Risky
	// Damage to the aircraft is guaranteed and the outcome for the
	// occupants is questionable.
	Unsafe
)

var riskCategoryNames = []string{"safe", "risky", "unsafe"}

// RiskCategories lists all categories.
var RiskCategories = []RiskCategory{Safe, Risky, Unsafe}

func (r RiskCategory) String() string {
	if r >= 0 && int(r) < len(riskCategoryNames) {
		return riskCategoryNames[r]
	}
	return fmt.Sprintf("RiskCategory(%d)", int(r))
}

func (r RiskCategory) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(riskCategoryNames) {
		return nil, fmt.Errorf("%d: invalid risk category", int(r))
	}
	return []byte(r.String()), nil
}

func (r *RiskCategory) UnmarshalText(b []byte) error {
	for i, n := range riskCategoryNames {
		if strings.EqualFold(string(b), n) {
			*r = RiskCategory(i)
			return nil
		}
	}
	return fmt.Errorf("%q: unknown risk category", string(b))
}

// Config holds the presentation and classification settings of the zone
// engine.
type Config struct {
	// Display color for each category.
	Palette map[RiskCategory]string
	// Categories from most to least preferred; a region reachable from
	// locations of different categories is attributed to the most
	// preferred one.
	Precedence []RiskCategory
	// Headroom ratios below UnsafeHeadroom are unsafe, those below
	// RiskyHeadroom are risky.
	UnsafeHeadroom float64
	RiskyHeadroom  float64
	// Locations with one of these human presence levels are risky.
	RiskyPresence []aviation.HumanPresence
}

func DefaultConfig() Config {
	return Config{
		Palette: map[RiskCategory]string{
			Safe:   "#388E3C",
			Risky:  "#FFC107",
			Unsafe: "#E64A19",
		},
		Precedence:     []RiskCategory{Safe, Risky, Unsafe},
		UnsafeHeadroom: -0.25,
		RiskyHeadroom:  -0.15,
		RiskyPresence:  []aviation.HumanPresence{aviation.Dense, aviation.EventOnly},
	}
}

func (c Config) Color(r RiskCategory) string {
	return c.Palette[r]
}

// Validate checks that the precedence lists every category exactly once
// and that every category has a color.
func (c Config) Validate() error {
	if len(c.Precedence) != len(RiskCategories) {
		return fmt.Errorf("precedence must list %d categories, got %d", len(RiskCategories), len(c.Precedence))
	}
	for _, r := range RiskCategories {
		if !slices.Contains(c.Precedence, r) {
			return fmt.Errorf("precedence is missing %q", r)
		}
		if c.Palette[r] == "" {
			return fmt.Errorf("no color for %q", r)
		}
	}
	if c.UnsafeHeadroom > c.RiskyHeadroom {
		return fmt.Errorf("unsafe headroom threshold %f is above risky threshold %f", c.UnsafeHeadroom,
			c.RiskyHeadroom)
	}
	return nil
}

// ClassifyRisk rates a location given the landing headroom ratio of the
// aircraft in question. Rules are checked in order and the first match
// wins.
func (c Config) ClassifyRisk(loc aviation.Location, headroom float64) RiskCategory {
	if loc.Surface == aviation.Water {
		return Unsafe
	}

	if headroom < c.UnsafeHeadroom {
		return Unsafe
	}
	if headroom < c.RiskyHeadroom {
		return Risky
	}

	if slices.Contains(c.RiskyPresence, loc.HumanPresence) {
		return Risky
	}

	return Safe
}
