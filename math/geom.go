// math/geom.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float64
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{P0: [2]float64{1e30, 1e30}, P1: [2]float64{-1e30, -1e30}}
}

// Extent2DFromP2LLs returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromP2LLs(pts []Point2LL) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = Union(e, p)
	}
	return e
}

func (e Extent2D) Width() float64 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float64 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Inside(p [2]float64) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// Overlaps returns true if the two provided Extent2Ds overlap.
func Overlaps(a Extent2D, b Extent2D) bool {
	x := (a.P1[0] >= b.P0[0]) && (a.P0[0] <= b.P1[0])
	y := (a.P1[1] >= b.P0[1]) && (a.P0[1] <= b.P1[1])
	return x && y
}

func Union(e Extent2D, p [2]float64) Extent2D {
	e.P0[0] = min(e.P0[0], p[0])
	e.P0[1] = min(e.P0[1], p[1])
	e.P1[0] = max(e.P1[0], p[0])
	e.P1[1] = max(e.P1[1], p[1])
	return e
}

///////////////////////////////////////////////////////////////////////////
// Segments

// SegmentSegmentIntersect returns the intersection point of the two line
// segments specified by the vertices (p1, p2) and (p3, p4). An additional
// returned Boolean value indicates whether a valid intersection was found
// within both segments. Collinear overlapping segments are reported as
// intersecting at the first shared point found.
func SegmentSegmentIntersect(p1, p2, p3, p4 [2]float64) ([2]float64, bool) {
	d12 := Sub2(p2, p1)
	d34 := Sub2(p4, p3)
	denom := Cross(d12, d34)
	d13 := Sub2(p3, p1)

	if gomath.Abs(denom) < 1e-18 {
		if gomath.Abs(Cross(d13, d12)) > 1e-18 {
			// parallel and distinct
			return [2]float64{}, false
		}
		// Collinear; see if any endpoint lies within the other segment.
		b12 := Extent2DFromP2LLs([]Point2LL{p1, p2})
		b34 := Extent2DFromP2LLs([]Point2LL{p3, p4})
		for _, p := range [][2]float64{p3, p4} {
			if b12.Inside(p) {
				return p, true
			}
		}
		for _, p := range [][2]float64{p1, p2} {
			if b34.Inside(p) {
				return p, true
			}
		}
		return [2]float64{}, false
	}

	t := Cross(d13, d34) / denom
	u := Cross(d13, d12) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return [2]float64{}, false
	}
	return Add2(p1, Scale2(d12, t)), true
}

///////////////////////////////////////////////////////////////////////////
// Rings

// RingIsClosed reports whether the ring's last vertex repeats its first.
func RingIsClosed(ring []Point2LL) bool {
	return len(ring) > 1 && ring[0] == ring[len(ring)-1]
}

// OpenRing returns the ring without a repeated closing vertex.
func OpenRing(ring []Point2LL) []Point2LL {
	if RingIsClosed(ring) {
		return ring[:len(ring)-1]
	}
	return ring
}

// SignedRingArea returns the planar shoelace area of the ring in squared
// degrees; counter-clockwise rings have positive area. The ring may or may
// not repeat its first vertex.
func SignedRingArea(ring []Point2LL) float64 {
	ring = OpenRing(ring)
	if len(ring) < 3 {
		return 0
	}
	var a float64
	for i := range ring {
		p0, p1 := ring[i], ring[(i+1)%len(ring)]
		a += Cross(p0, p1)
	}
	return a / 2
}

// RingSelfIntersects reports whether any two non-adjacent edges of the
// ring touch or cross, or whether the ring has zero-length edges.
func RingSelfIntersects(ring []Point2LL) bool {
	ring = OpenRing(ring)
	n := len(ring)
	if n < 3 {
		return true
	}

	for i := range n {
		if ring[i] == ring[(i+1)%n] {
			return true
		}
	}

	for i := range n {
		a0, a1 := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				// these two share the closing vertex
				continue
			}
			b0, b1 := ring[j], ring[(j+1)%n]
			if _, ok := SegmentSegmentIntersect(a0, a1, b0, b1); ok {
				return true
			}
		}
	}
	return false
}

// PointInPolygon2LL checks whether the given point is inside the given
// ring; it handles rings with or without a repeated closing vertex.
func PointInPolygon2LL(p Point2LL, pts []Point2LL) bool {
	pts = OpenRing(pts)
	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if (p0[1] <= p[1] && p[1] < p1[1]) || (p1[1] <= p[1] && p[1] < p0[1]) {
			x := p0[0] + (p[1]-p0[1])*(p1[0]-p0[0])/(p1[1]-p0[1])
			if x > p[0] {
				inside = !inside
			}
		}
	}
	return inside
}
