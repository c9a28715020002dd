// aviation/catalog.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"

	"gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////
// Catalog

// Catalog holds the aircraft and landing locations known to the system.
// It is not modified after it has been loaded and may be shared between
// goroutines.
type Catalog struct {
	aircraft     []Aircraft // ordered by MTOW
	aircraftByID map[string]int
	locations    []Location // ordered by name
	locationByID map[string]int
	midpoints    *math.KDNode
}

// LoadCatalogFiles reads the aircraft and location files; files with a
// .zst extension are decompressed.
func LoadCatalogFiles(aircraftPath, locationsPath string, lg *log.Logger) (*Catalog, error) {
	ab, err := util.ReadResource(aircraftPath)
	if err != nil {
		return nil, err
	}
	lb, err := util.ReadResource(locationsPath)
	if err != nil {
		return nil, err
	}
	return LoadCatalog(ab, lb, lg)
}

// LoadCatalog parses the YAML aircraft and location lists, derives the
// location geometry and the landing headroom of every location for every
// aircraft, and validates the result. All problems found are reported
// together in the returned error.
func LoadCatalog(aircraftYAMLData, locationsYAMLData []byte, lg *log.Logger) (*Catalog, error) {
	var rawAircraft []aircraftYAML
	if err := decodeYAML(aircraftYAMLData, &rawAircraft); err != nil {
		return nil, fmt.Errorf("aircraft: %w", err)
	}
	var rawLocations []locationYAML
	if err := decodeYAML(locationsYAMLData, &rawLocations); err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}

	var e util.ErrorLogger

	c := &Catalog{
		aircraftByID: make(map[string]int),
		locationByID: make(map[string]int),
	}

	e.Push("aircraft")
	for _, ra := range rawAircraft {
		ac := ra.aircraft()
		e.Push(util.Select(ac.ID != "", ac.ID, "(unnamed)"))
		ok := validateAircraft(ac, &e)
		if _, dupe := c.aircraftByID[ac.ID]; dupe {
			e.ErrorString("duplicate aircraft id")
			ok = false
		}
		if ok {
			c.aircraftByID[ac.ID] = -1
			c.aircraft = append(c.aircraft, ac)
		}
		e.Pop()
	}
	e.Pop()

	e.Push("locations")
	for i, rl := range rawLocations {
		e.Push(util.Select(rl.Name != "", rl.Name, fmt.Sprintf("#%d", i+1)))
		ok := validateLocationYAML(rl, &e)
		if ok {
			loc := rl.location()
			if _, dupe := c.locationByID[loc.ID]; dupe {
				e.ErrorString("duplicate location coordinates")
			} else {
				c.locationByID[loc.ID] = -1
				c.locations = append(c.locations, loc)
			}
		}
		e.Pop()
	}
	e.Pop()

	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, e.Err()
	}

	slices.SortStableFunc(c.aircraft, func(a, b Aircraft) int {
		if a.MTOW < b.MTOW {
			return -1
		} else if a.MTOW > b.MTOW {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	for i, ac := range c.aircraft {
		c.aircraftByID[ac.ID] = i
	}

	slices.SortStableFunc(c.locations, func(a, b Location) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	midpoints := make([]math.Point2LL, len(c.locations))
	for i := range c.locations {
		loc := &c.locations[i]
		c.locationByID[loc.ID] = i
		midpoints[i] = loc.Midpoint()

		for _, ac := range c.aircraft {
			if req, err := ac.Performance.LandingDistanceOn(loc.Surface); err == nil && req > 0 {
				loc.HeadroomRatios[ac.ID] = HeadroomRatio(loc.Length, req)
			} else {
				lg.Warnf("%s: no landing headroom for %s: %v", loc.Name, ac.ID, err)
			}
		}
	}
	c.midpoints = math.BuildKDTree(midpoints)

	lg.Infof("Loaded %d aircraft and %d locations", len(c.aircraft), len(c.locations))

	return c, nil
}

func decodeYAML(b []byte, v any) error {
	// An empty file is an empty list.
	if err := yaml.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func validateAircraft(ac Aircraft, e *util.ErrorLogger) bool {
	ok := true
	if ac.ID == "" {
		e.ErrorString("missing \"id\"")
		ok = false
	}
	if err := ac.Performance.Validate(); err != nil {
		e.Error(err)
		ok = false
	}
	if ac.Landing != nil && (ac.Landing.GroundRoll <= 0 || ac.Landing.TotalDistance < ac.Landing.GroundRoll) {
		e.ErrorString("landing ground roll %f and total distance %f are inconsistent",
			ac.Landing.GroundRoll, ac.Landing.TotalDistance)
		ok = false
	}
	for s, d := range ac.Performance.LandingDistance {
		if !math.IsFinite(d) || d <= 0 {
			e.ErrorString("invalid landing distance %f on %s", d, s)
			ok = false
		}
	}
	return ok
}

func validateLocationYAML(ly locationYAML, e *util.ErrorLogger) bool {
	ok := true
	if ly.Name == "" {
		e.ErrorString("missing \"name\"")
		ok = false
	}

	check := func(what string, c *coordinateYAML) {
		if c == nil {
			e.ErrorString("missing %q coordinate", what)
			ok = false
		} else if !math.Point2LL(*c).IsValid() {
			e.ErrorString("invalid %q coordinate %v", what, math.Point2LL(*c))
			ok = false
		}
	}
	check("start", ly.Coordinates.Start)
	check("end", ly.Coordinates.End)

	if ok && *ly.Coordinates.Start == *ly.Coordinates.End {
		e.ErrorString("start and end coordinates are identical")
		ok = false
	}
	return ok
}

// Aircraft returns all aircraft, ordered by increasing MTOW.
func (c *Catalog) Aircraft() []Aircraft {
	return slices.Clone(c.aircraft)
}

func (c *Catalog) LookupAircraft(id string) (Aircraft, error) {
	if i, ok := c.aircraftByID[id]; ok {
		return c.aircraft[i], nil
	}
	return Aircraft{}, fmt.Errorf("%q: %w", id, ErrUnknownAircraft)
}

// Locations returns all locations, ordered by name.
func (c *Catalog) Locations() []Location {
	return slices.Clone(c.locations)
}

func (c *Catalog) LookupLocation(id string) (Location, error) {
	if i, ok := c.locationByID[id]; ok {
		return c.locations[i], nil
	}
	return Location{}, fmt.Errorf("%q: %w", id, ErrUnknownLocation)
}

// Closest returns the location whose landing run midpoint is closest to
// p. It returns false if the catalog has no locations.
func (c *Catalog) Closest(p math.Point2LL) (Location, bool) {
	n := c.midpoints.Nearest(p)
	if n == nil {
		return Location{}, false
	}
	return c.locations[n.Index], true
}
