// geometry/geometry.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geometry provides the planar polygon model used for
// reachability envelopes and risk zones, along with the kernel of
// geodesic and boolean operations the zone engine is built on.
package geometry

import (
	"errors"
	"fmt"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
)

var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Ring is a sequence of positions; rings produced by this package are
// closed, i.e. the last position repeats the first one.
type Ring []math.Point2LL

func (r Ring) IsClosed() bool {
	return math.RingIsClosed(r)
}

// Close returns the ring with the first position appended if it isn't
// already closed.
func (r Ring) Close() Ring {
	if len(r) == 0 || r.IsClosed() {
		return r
	}
	c := make(Ring, len(r), len(r)+1)
	copy(c, r)
	return append(c, r[0])
}

// SignedArea returns the planar area in square degrees; positive for
// counter-clockwise rings.
func (r Ring) SignedArea() float64 {
	return math.SignedRingArea(r)
}

func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Validate returns ErrDegenerateGeometry if the ring is not closed, has
// non-finite coordinates, encloses no area or crosses itself.
func (r Ring) Validate() error {
	if len(r) < 4 || !r.IsClosed() {
		return fmt.Errorf("ring with %d positions is not closed: %w", len(r), ErrDegenerateGeometry)
	}
	for i, p := range r {
		if !math.IsFinite(p[0], p[1]) {
			return fmt.Errorf("position %d is %v: %w", i, p, ErrDegenerateGeometry)
		}
	}
	if r.Area() == 0 {
		return fmt.Errorf("ring encloses no area: %w", ErrDegenerateGeometry)
	}
	if math.RingSelfIntersects(r) {
		return fmt.Errorf("ring intersects itself: %w", ErrDegenerateGeometry)
	}
	return nil
}

// Polygon is an outer ring followed by zero or more holes.
type Polygon []Ring

func (p Polygon) Outer() Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

func (p Polygon) Holes() []Ring {
	if len(p) < 2 {
		return nil
	}
	return p[1:]
}

// Area returns the area of the outer ring minus the area of its holes.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}
	a := p[0].Area()
	for _, h := range p.Holes() {
		a -= h.Area()
	}
	return a
}

// Contains reports whether pt is inside the outer ring and outside all
// holes.
func (p Polygon) Contains(pt math.Point2LL) bool {
	if len(p) == 0 || !math.PointInPolygon2LL(pt, p[0]) {
		return false
	}
	for _, h := range p.Holes() {
		if math.PointInPolygon2LL(pt, h) {
			return false
		}
	}
	return true
}

type Kind int

const (
	KindEmpty Kind = iota
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Geometry is an areal geometry that is either empty, a single polygon
// or a multipolygon. The zero value is the empty geometry.
type Geometry struct {
	Kind     Kind
	Polygons []Polygon
}

// FromRing returns a polygon geometry with r as its only ring, closed and
// oriented counter-clockwise.
func FromRing(r Ring) Geometry {
	return Geometry{Kind: KindPolygon, Polygons: []Polygon{{orient(Ring(math.OpenRing(r)), true)}}}
}

// FromPolygons returns the geometry that has the given polygons, choosing
// the kind from their number.
func FromPolygons(polys []Polygon) Geometry {
	switch len(polys) {
	case 0:
		return Geometry{}
	case 1:
		return Geometry{Kind: KindPolygon, Polygons: polys}
	default:
		return Geometry{Kind: KindMultiPolygon, Polygons: polys}
	}
}

func (g Geometry) IsEmpty() bool {
	return g.Kind == KindEmpty || len(g.Polygons) == 0
}

func (g Geometry) Area() float64 {
	var a float64
	for _, p := range g.Polygons {
		a += p.Area()
	}
	return a
}

// Rings returns all rings of all polygons.
func (g Geometry) Rings() []Ring {
	var rings []Ring
	for _, p := range g.Polygons {
		rings = append(rings, p...)
	}
	return rings
}

func (g Geometry) Contains(pt math.Point2LL) bool {
	for _, p := range g.Polygons {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

func (g Geometry) Bounds() math.Extent2D {
	e := math.EmptyExtent2D()
	for _, p := range g.Polygons {
		for _, pt := range p.Outer() {
			e = math.Union(e, pt)
		}
	}
	return e
}

func (g Geometry) String() string {
	return fmt.Sprintf("%s(%d polygons, %d rings)", g.Kind, len(g.Polygons), len(g.Rings()))
}

// Kernel collects the geodesic and polygon boolean operations needed to
// build reachability envelopes and merge them into zones.
type Kernel interface {
	// RhumbDestination returns the point reached from origin by following
	// the given bearing (degrees clockwise from north) for distanceKm.
	RhumbDestination(origin math.Point2LL, distanceKm, bearingDeg float64) math.Point2LL
	// Rotate rotates every position of the ring about pivot by the given
	// clockwise angle in radians, preserving each position's rhumb
	// distance from the pivot.
	Rotate(r Ring, bearingRadians float64, pivot math.Point2LL) (Ring, error)
	Union(a, b Geometry) (Geometry, error)
	// Difference returns the part of a that is not covered by b.
	Difference(a, b Geometry) (Geometry, error)
}
