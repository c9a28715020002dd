// zones/zones_test.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
)

func testAircraft() aviation.Aircraft {
	curve := make([]aviation.RangeSample, aviation.RangeCurveSamples)
	for i := range curve {
		curve[i] = aviation.RangeSample{
			Bearing:   math.Radians(float64(90 + 10*i)),
			Slope:     8,
			Intercept: -100,
		}
	}
	return aviation.Aircraft{
		ID:   "test",
		Name: "Test Aircraft",
		MTOW: 2000,
		Performance: aviation.Performance{
			TurnRadius: 150,
			RangeCurve: curve,
			LandingDistance: map[aviation.SurfaceType]float64{
				aviation.Asphalt: 400,
				aviation.Gras:    450,
				aviation.Water:   400,
			},
		},
	}
}

type locOpt func(*aviation.Location)

func reversible(l *aviation.Location) { l.Reversible = true }

func surface(s aviation.SurfaceType) locOpt {
	return func(l *aviation.Location) { l.Surface = s }
}

func presence(h aviation.HumanPresence) locOpt {
	return func(l *aviation.Location) { l.HumanPresence = h }
}

func usage(u aviation.UsageType) locOpt {
	return func(l *aviation.Location) { l.Usage = u }
}

func headroom(h float64) locOpt {
	return func(l *aviation.Location) { l.HeadroomRatios["test"] = h }
}

// makeLocation returns a location from start to end with a headroom of
// 0.5 for the test aircraft unless overridden.
func makeLocation(name string, start, end math.Point2LL, opts ...locOpt) aviation.Location {
	l := aviation.Location{
		ID:             aviation.LocationID(start, end),
		Name:           name,
		Start:          start,
		End:            end,
		Bearing:        math.Radians(math.RhumbBearing(start, end)),
		Length:         math.DistanceMeters(start, end),
		Surface:        aviation.Gras,
		Usage:          aviation.Agricultural,
		HeadroomRatios: map[string]float64{"test": 0.5},
	}
	for _, opt := range opts {
		opt(&l)
	}
	if l.Reversible {
		rb := math.Radians(math.RhumbBearing(end, start))
		l.ReverseBearing = &rb
	}
	return l
}

// northward returns a location whose landing run points due north and is
// about lengthMeters long.
func northward(name string, origin math.Point2LL, lengthMeters float64, opts ...locOpt) aviation.Location {
	return makeLocation(name, origin, math.RhumbDestination(origin, lengthMeters, 0), opts...)
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestClassifyRisk(t *testing.T) {
	cfg := DefaultConfig()
	base := makeLocation("field", math.Point2LL{9.9, 53.5}, math.Point2LL{9.9, 53.505})

	for _, tc := range []struct {
		name     string
		opts     []locOpt
		headroom float64
		expected RiskCategory
	}{
		{name: "plenty", headroom: 0.5, expected: Safe},
		{name: "water", opts: []locOpt{surface(aviation.Water)}, headroom: 2, expected: Unsafe},
		{name: "water with people", opts: []locOpt{surface(aviation.Water), presence(aviation.Dense)}, headroom: 2, expected: Unsafe},
		{name: "below unsafe threshold", headroom: -0.2500001, expected: Unsafe},
		{name: "at unsafe threshold", headroom: -0.25, expected: Risky},
		{name: "below risky threshold", headroom: -0.1500001, expected: Risky},
		{name: "at risky threshold", headroom: -0.15, expected: Safe},
		{name: "short and crowded", opts: []locOpt{presence(aviation.Dense)}, headroom: -0.3, expected: Unsafe},
		{name: "dense", opts: []locOpt{presence(aviation.Dense)}, headroom: 1, expected: Risky},
		{name: "event only", opts: []locOpt{presence(aviation.EventOnly)}, headroom: 1, expected: Risky},
		{name: "sparse", opts: []locOpt{presence(aviation.Sparse)}, headroom: 1, expected: Safe},
		{name: "none", opts: []locOpt{presence(aviation.None)}, headroom: 1, expected: Safe},
	} {
		t.Run(tc.name, func(t *testing.T) {
			loc := base
			for _, opt := range tc.opts {
				opt(&loc)
			}
			if r := cfg.ClassifyRisk(loc, tc.headroom); r != tc.expected {
				t.Errorf("got %s, expected %s", r, tc.expected)
			}
		})
	}
}

func TestRiskCategoryText(t *testing.T) {
	for _, r := range RiskCategories {
		b, err := r.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back RiskCategory
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Errorf("%s: got %s, %v", r, back, err)
		}
	}
	if _, err := RiskCategory(7).MarshalText(); err == nil {
		t.Errorf("expected error for invalid category")
	}
	cfg := DefaultConfig()
	if cfg.Color(Safe) != "#388E3C" || cfg.Color(Risky) != "#FFC107" || cfg.Color(Unsafe) != "#E64A19" {
		t.Errorf("unexpected palette %v", cfg.Palette)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Precedence = []RiskCategory{Safe, Safe, Unsafe}
	if cfg.Validate() == nil {
		t.Errorf("expected error for duplicate precedence entry")
	}

	cfg = DefaultConfig()
	cfg.Palette = map[RiskCategory]string{Safe: "#fff"}
	if cfg.Validate() == nil {
		t.Errorf("expected error for missing colors")
	}

	cfg = DefaultConfig()
	cfg.UnsafeHeadroom = 0
	if cfg.Validate() == nil {
		t.Errorf("expected error for inverted thresholds")
	}
	if _, err := NewEngine(nil, cfg, nil); err == nil {
		t.Errorf("NewEngine accepted an invalid config")
	}
}

func TestEnvelopeClosure(t *testing.T) {
	e := testEngine(t)
	ac := testAircraft()

	for _, loc := range []aviation.Location{
		makeLocation("oblique", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}),
		makeLocation("oblique reversible", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}, reversible),
		makeLocation("westward", math.Point2LL{10.0, 53.6}, math.Point2LL{9.99, 53.6}),
		northward("long", math.Point2LL{9.8, 53.7}, 1500),
	} {
		t.Run(loc.Name, func(t *testing.T) {
			env, err := e.BuildEnvelope(loc, ac, 300)
			if err != nil {
				t.Fatal(err)
			}
			if len(env.Ring) != EnvelopePoints || len(env.Ring) != 37 {
				t.Errorf("expected 37 positions, got %d", len(env.Ring))
			}
			if env.Ring[0] != env.Ring[len(env.Ring)-1] {
				t.Errorf("ring is not closed: %v != %v", env.Ring[0], env.Ring[len(env.Ring)-1])
			}
			if err := env.Ring.Validate(); err != nil {
				t.Errorf("invalid ring: %v", err)
			}
			if env.LocationID != loc.ID || env.Category != Safe {
				t.Errorf("unexpected envelope tags %q %s", env.LocationID, env.Category)
			}

			g := geometry.FromRing(env.Ring)
			for _, p := range []math.Point2LL{loc.Start, loc.End, loc.Midpoint()} {
				if !g.Contains(p) {
					t.Errorf("envelope doesn't contain landing run point %v", p)
				}
			}
		})
	}
}

func TestEnvelopeBackHalf(t *testing.T) {
	e := testEngine(t)
	ac := testAircraft()
	const alt = 400.0
	origin := math.Point2LL{9.9, 53.5}

	center := math.RhumbDestination(origin, ac.Performance.TurnRadius, 180)
	check := func(t *testing.T, ring geometry.Ring, from math.Point2LL, idx int, s aviation.RangeSample, offset float64) {
		t.Helper()
		if d := math.RhumbDistance(from, ring[idx]); gomath.Abs(d-s.Distance(alt)) > 0.01 {
			t.Errorf("position %d: distance %f, expected %f", idx, d, s.Distance(alt))
		}
		b := math.RhumbBearing(from, ring[idx])
		diff := gomath.Abs(math.NormalizeHeading(b - (s.BearingDegrees() + offset)))
		diff = min(diff, 360-diff)
		if diff > 1e-5 {
			t.Errorf("position %d: bearing %f, expected %f", idx, b, math.NormalizeHeading(s.BearingDegrees()+offset))
		}
	}

	t.Run("reversible", func(t *testing.T) {
		loc := northward("rev", origin, 800, reversible)
		env, err := e.BuildEnvelope(loc, ac, alt)
		if err != nil {
			t.Fatal(err)
		}
		mirror := math.RhumbDestination(center, 2*ac.Performance.TurnRadius+loc.Length, 0)
		for i, s := range ac.Performance.FrontHalf() {
			check(t, env.Ring, center, i, s, 0)
			check(t, env.Ring, mirror, 18+i, s, 180)
		}
	})

	t.Run("one-way", func(t *testing.T) {
		loc := northward("oneway", origin, 800)
		env, err := e.BuildEnvelope(loc, ac, alt)
		if err != nil {
			t.Fatal(err)
		}
		required := ac.Performance.LandingDistance[aviation.Gras]
		far := math.RhumbDestination(center, loc.Length-required, 0)
		for i, s := range ac.Performance.BackHalf() {
			check(t, env.Ring, far, 18+i, s, 0)
		}
	})

	t.Run("too short for an inset", func(t *testing.T) {
		loc := northward("short", origin, 200, headroom(-0.5))
		env, err := e.BuildEnvelope(loc, ac, alt)
		if err != nil {
			t.Fatal(err)
		}
		if env.Category != Unsafe {
			t.Errorf("expected unsafe, got %s", env.Category)
		}
		for i, s := range ac.Performance.BackHalf() {
			check(t, env.Ring, center, 18+i, s, 0)
		}
	})
}

func TestEnvelopeRotation(t *testing.T) {
	e := testEngine(t)
	ac := testAircraft()
	origin := math.Point2LL{9.9, 53.5}

	north, err := e.BuildEnvelope(northward("n", origin, 600), ac, 300)
	if err != nil {
		t.Fatal(err)
	}
	east, err := e.BuildEnvelope(makeLocation("e", origin, math.RhumbDestination(origin, 600, 90)), ac, 300)
	if err != nil {
		t.Fatal(err)
	}

	for i := range north.Ring {
		dn, de := math.RhumbDistance(origin, north.Ring[i]), math.RhumbDistance(origin, east.Ring[i])
		if gomath.Abs(dn-de) > 0.01 {
			t.Errorf("position %d: distance to pivot changed from %f to %f", i, dn, de)
		}
		bn, be := math.RhumbBearing(origin, north.Ring[i]), math.RhumbBearing(origin, east.Ring[i])
		if d := gomath.Abs(math.NormalizeHeading(be - bn - 90)); min(d, 360-d) > 1e-5 {
			t.Errorf("position %d: bearing %f is not 90 degrees from %f", i, be, bn)
		}
	}
}

func TestEnvelopeAreaMonotonic(t *testing.T) {
	e := testEngine(t)
	ac := testAircraft()
	loc := makeLocation("field", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503})

	altitudes := []float64{50, 150, 300, 600, 900, 1500}
	if log.RaceEnabled {
		altitudes = altitudes[:3]
	}

	prev := 0.0
	for _, alt := range altitudes {
		env, err := e.BuildEnvelope(loc, ac, alt)
		if err != nil {
			t.Fatalf("%f: %v", alt, err)
		}
		a := env.Ring.Area()
		if a <= prev {
			t.Errorf("area at %fm (%g) is not larger than below (%g)", alt, a, prev)
		}
		prev = a
	}
}

func TestEnvelopeErrors(t *testing.T) {
	e := testEngine(t)
	ac := testAircraft()
	loc := makeLocation("field", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503})

	// Intercept is -100m, so nothing is reachable from the ground.
	_, err := e.BuildEnvelope(loc, ac, 0)
	if !errors.Is(err, geometry.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	var ce *ComputationError
	if !errors.As(err, &ce) || ce.LocationID != loc.ID {
		t.Errorf("expected ComputationError for %s, got %v", loc.ID, err)
	}

	if _, err := e.BuildEnvelope(loc, ac, gomath.NaN()); !errors.Is(err, ErrInvalidAltitude) {
		t.Errorf("expected ErrInvalidAltitude, got %v", err)
	}

	noHeadroom := loc
	noHeadroom.HeadroomRatios = nil
	if _, err := e.BuildEnvelope(noHeadroom, ac, 300); !errors.Is(err, aviation.ErrMissingPerformance) {
		t.Errorf("expected ErrMissingPerformance, got %v", err)
	}

	noLanding := testAircraft()
	noLanding.Performance.LandingDistance = nil
	if _, err := e.BuildEnvelope(loc, noLanding, 300); !errors.Is(err, aviation.ErrMissingPerformance) {
		t.Errorf("expected ErrMissingPerformance, got %v", err)
	}

	shortCurve := testAircraft()
	shortCurve.Performance.RangeCurve = shortCurve.Performance.RangeCurve[:30]
	if _, err := e.BuildEnvelope(loc, shortCurve, 300); !errors.Is(err, aviation.ErrInvalidRangeCurve) {
		t.Errorf("expected ErrInvalidRangeCurve, got %v", err)
	}
}

func TestCompositeEmpty(t *testing.T) {
	e := testEngine(t)
	z, err := e.CompositeZones(nil, testAircraft(), 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(z) != 0 {
		t.Errorf("expected empty zone map, got %v", z)
	}
}

func TestCompositeWaterOnly(t *testing.T) {
	e := testEngine(t)
	loc := makeLocation("lake", math.Point2LL{9.9, 53.5}, math.Point2LL{9.91, 53.5}, surface(aviation.Water))

	z, err := e.CompositeZones([]aviation.Location{loc}, testAircraft(), 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(z) != 1 {
		t.Fatalf("expected a single category, got %v", z.Categories(e.Config))
	}
	if g, ok := z[Unsafe]; !ok || g.Kind != geometry.KindPolygon {
		t.Errorf("expected unsafe polygon, got %v", g)
	}
}

func TestCompositeIdenticalFootprints(t *testing.T) {
	e := testEngine(t)
	start, end := math.Point2LL{9.9, 53.5}, math.Point2LL{9.905, 53.504}
	safe := makeLocation("quiet", start, end)
	risky := makeLocation("busy", start, end, presence(aviation.Dense))

	z, err := e.CompositeZones([]aviation.Location{risky, safe}, testAircraft(), 300)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := z[Risky]; ok {
		t.Errorf("risky zone should be fully covered by the safe one")
	}
	if _, ok := z[Safe]; !ok {
		t.Errorf("safe zone missing")
	}
	if cats := z.Categories(e.Config); len(cats) != 1 || cats[0] != Safe {
		t.Errorf("unexpected categories %v", cats)
	}
}

func TestCompositeAltitudeArea(t *testing.T) {
	e := testEngine(t)
	locs := []aviation.Location{
		makeLocation("a", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}),
		makeLocation("b", math.Point2LL{9.95, 53.52}, math.Point2LL{9.95, 53.526}, reversible),
	}

	area := func(alt float64) float64 {
		z, err := e.CompositeZones(locs, testAircraft(), alt)
		if err != nil {
			t.Fatalf("%f: %v", alt, err)
		}
		var a float64
		for _, g := range z {
			a += g.Area()
		}
		return a
	}

	if a300, a600 := area(300), area(600); a600 < a300 {
		t.Errorf("area at 600m (%g) is smaller than at 300m (%g)", a600, a300)
	}
}

func TestCompositeMutualExclusion(t *testing.T) {
	e := testEngine(t)
	k := geometry.NewClipKernel()
	ac := testAircraft()

	locs := []aviation.Location{
		makeLocation("safe", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}),
		makeLocation("risky", math.Point2LL{9.93, 53.505}, math.Point2LL{9.93, 53.51}, presence(aviation.EventOnly)),
		makeLocation("unsafe", math.Point2LL{9.915, 53.48}, math.Point2LL{9.925, 53.48}, surface(aviation.Water), reversible),
		makeLocation("far", math.Point2LL{10.5, 53.9}, math.Point2LL{10.505, 53.9}, headroom(-0.2)),
	}

	z, err := e.CompositeZones(locs, ac, 300)
	if err != nil {
		t.Fatal(err)
	}
	if cats := z.Categories(e.Config); len(cats) != 3 || cats[0] != Safe || cats[1] != Risky || cats[2] != Unsafe {
		t.Fatalf("expected all three categories in precedence order, got %v", cats)
	}
	if z[Risky].Kind != geometry.KindMultiPolygon {
		t.Errorf("expected the far risky location to give a separate polygon, got %v", z[Risky])
	}

	// Zones don't overlap.
	total := 0.0
	for i, a := range RiskCategories {
		total += z[a].Area()
		for _, b := range RiskCategories[i+1:] {
			inter, err := k.Intersection(z[a], z[b])
			if err != nil {
				t.Fatal(err)
			}
			if inter.Area() > 1e-9 {
				t.Errorf("%s and %s overlap by %g", a, b, inter.Area())
			}
		}
	}

	// Together they cover exactly the union of all envelopes.
	var all geometry.Geometry
	for _, loc := range locs {
		env, err := e.BuildEnvelope(loc, ac, 300)
		if err != nil {
			t.Fatal(err)
		}
		if all, err = k.Union(all, geometry.FromRing(env.Ring)); err != nil {
			t.Fatal(err)
		}
	}
	if gomath.Abs(total-all.Area()) > 1e-6*all.Area() {
		t.Errorf("zones cover %g, envelopes %g", total, all.Area())
	}

	// The safe location's landing run is safe, whatever else reaches it.
	if !z[Safe].Contains(locs[0].Midpoint()) {
		t.Errorf("safe zone doesn't contain the safe location")
	}
	if z[Unsafe].Contains(locs[0].Midpoint()) || z[Risky].Contains(locs[0].Midpoint()) {
		t.Errorf("safe location is also covered by a less preferred zone")
	}
}

// countingKernel records the boolean operations that are performed.
type countingKernel struct {
	geometry.ClipKernel
	unions, differences int
}

func (k *countingKernel) Union(a, b geometry.Geometry) (geometry.Geometry, error) {
	k.unions++
	return k.ClipKernel.Union(a, b)
}

func (k *countingKernel) Difference(a, b geometry.Geometry) (geometry.Geometry, error) {
	k.differences++
	return k.ClipKernel.Difference(a, b)
}

func TestCompositeSubtractsOnlyPresentCategories(t *testing.T) {
	k := &countingKernel{ClipKernel: geometry.NewClipKernel()}
	e, err := NewEngine(k, DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	locs := []aviation.Location{
		makeLocation("safe", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}),
		makeLocation("unsafe", math.Point2LL{9.915, 53.48}, math.Point2LL{9.925, 53.48}, surface(aviation.Water)),
		makeLocation("unsafe2", math.Point2LL{9.815, 53.48}, math.Point2LL{9.825, 53.48}, surface(aviation.Water)),
	}
	if _, err := e.CompositeZones(locs, testAircraft(), 300); err != nil {
		t.Fatal(err)
	}
	if k.unions != 3 {
		t.Errorf("expected 3 unions, got %d", k.unions)
	}
	if k.differences != 1 {
		t.Errorf("expected a single difference, got %d", k.differences)
	}
}

func TestCompositeFailsOnBadLocation(t *testing.T) {
	e := testEngine(t)
	good := makeLocation("good", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503})
	bad := makeLocation("bad", math.Point2LL{9.8, 53.5}, math.Point2LL{9.806, 53.503})
	bad.HeadroomRatios = map[string]float64{}

	_, err := e.CompositeZones([]aviation.Location{good, bad}, testAircraft(), 300)
	var ce *ComputationError
	if !errors.As(err, &ce) || ce.LocationName != "bad" {
		t.Errorf("expected ComputationError for the bad location, got %v", err)
	}
}

func TestAnnotateCenterlines(t *testing.T) {
	e := testEngine(t)
	locs := []aviation.Location{
		makeLocation("airfield", math.Point2LL{9.9, 53.5}, math.Point2LL{9.906, 53.503}, usage(aviation.Aeronautical)),
		makeLocation("meadow", math.Point2LL{9.8, 53.5}, math.Point2LL{9.806, 53.503}),
		makeLocation("park", math.Point2LL{9.7, 53.5}, math.Point2LL{9.706, 53.503}, presence(aviation.Dense), usage(aviation.Park)),
		makeLocation("river", math.Point2LL{9.6, 53.5}, math.Point2LL{9.606, 53.503}, surface(aviation.Water), usage(aviation.Waterway)),
	}

	lines, err := e.AnnotateCenterlines(locs, testAircraft())
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	expected := map[string]string{"meadow": "#388E3C", "park": "#FFC107", "river": "#E64A19"}
	for _, l := range lines {
		if l.Color != expected[l.Name] {
			t.Errorf("%s: got color %s, expected %s", l.Name, l.Color, expected[l.Name])
		}
		if len(l.Line) != 2 {
			t.Errorf("%s: expected 2 positions, got %d", l.Name, len(l.Line))
		}
	}
	if lines[0].Line[0] != locs[1].Start || lines[0].Line[1] != locs[1].End {
		t.Errorf("centerline was modified: %v", lines[0].Line)
	}

	bad := locs[1]
	bad.HeadroomRatios = nil
	if _, err := e.AnnotateCenterlines([]aviation.Location{bad}, testAircraft()); !errors.Is(err, aviation.ErrMissingPerformance) {
		t.Errorf("expected ErrMissingPerformance, got %v", err)
	}
}
