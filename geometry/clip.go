// geometry/clip.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geometry

import (
	"fmt"
	"slices"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"

	"github.com/ctessum/geom"
)

// DefaultSliverArea is the area in square degrees below which rings
// produced by boolean operations are discarded. At mid latitudes a square
// degree is on the order of 10^10 m^2, so this only drops rings smaller
// than a square centimeter.
const DefaultSliverArea = 1e-14

// ClipKernel implements Kernel with rhumb-line geodesy and the polygon
// clipper from github.com/ctessum/geom, operating on longitude/latitude
// as planar coordinates.
type ClipKernel struct {
	SliverArea float64
}

func NewClipKernel() ClipKernel {
	return ClipKernel{SliverArea: DefaultSliverArea}
}

func (ClipKernel) RhumbDestination(origin math.Point2LL, distanceKm, bearingDeg float64) math.Point2LL {
	return math.RhumbDestination(origin, distanceKm*1000, bearingDeg)
}

func (ClipKernel) Rotate(r Ring, bearingRadians float64, pivot math.Point2LL) (Ring, error) {
	if !math.IsFinite(bearingRadians, pivot[0], pivot[1]) {
		return nil, fmt.Errorf("rotation by %f about %v: %w", bearingRadians, pivot, ErrDegenerateGeometry)
	}

	angle := math.Degrees(bearingRadians)
	rotated := make(Ring, len(r))
	for i, p := range r {
		if !math.IsFinite(p[0], p[1]) {
			return nil, fmt.Errorf("position %d is %v: %w", i, p, ErrDegenerateGeometry)
		}
		if p == pivot {
			rotated[i] = p
			continue
		}
		dist := math.RhumbDistance(pivot, p)
		hdg := math.RhumbBearing(pivot, p) + angle
		rotated[i] = math.RhumbDestination(pivot, dist, hdg)
	}
	// Keep closure exact so that the first and last positions compare
	// equal after the floating-point round trip.
	if n := len(r); n > 1 && r[0] == r[n-1] {
		rotated[n-1] = rotated[0]
	}
	return rotated, nil
}

func (k ClipKernel) Union(a, b Geometry) (Geometry, error) {
	if a.IsEmpty() {
		return b, nil
	}
	if b.IsEmpty() || sameRings(a, b) {
		return a, nil
	}
	return k.apply(a, b, geom.Polygon.Union)
}

func (k ClipKernel) Difference(a, b Geometry) (Geometry, error) {
	if a.IsEmpty() {
		return Geometry{}, nil
	}
	if b.IsEmpty() {
		return a, nil
	}
	if sameRings(a, b) {
		return Geometry{}, nil
	}
	return k.apply(a, b, geom.Polygon.Difference)
}

// Intersection returns the region covered by both a and b.
func (k ClipKernel) Intersection(a, b Geometry) (Geometry, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return Geometry{}, nil
	}
	if sameRings(a, b) {
		return a, nil
	}
	return k.apply(a, b, geom.Polygon.Intersection)
}

func (k ClipKernel) apply(a, b Geometry, op func(geom.Polygon, geom.Polygonal) geom.Polygonal) (g Geometry, err error) {
	// The clipper panics on some degenerate inputs.
	defer func() {
		if r := recover(); r != nil {
			g, err = Geometry{}, fmt.Errorf("polygon clipping failed: %v: %w", r, ErrDegenerateGeometry)
		}
	}()

	ga, err := toClipPolygon(a)
	if err != nil {
		return Geometry{}, err
	}
	gb, err := toClipPolygon(b)
	if err != nil {
		return Geometry{}, err
	}

	var out geom.Polygon
	for _, p := range op(ga, gb).Polygons() {
		out = append(out, p...)
	}
	return k.assemble(out), nil
}

// toClipPolygon flattens all rings of g into a single clipper polygon;
// the clipper's even-odd fill rule turns holes back into holes.
func toClipPolygon(g Geometry) (geom.Polygon, error) {
	var p geom.Polygon
	for _, r := range g.Rings() {
		open := math.OpenRing(r)
		if len(open) < 3 {
			return nil, fmt.Errorf("ring with %d positions: %w", len(r), ErrDegenerateGeometry)
		}
		path := make(geom.Path, len(open))
		for i, pt := range open {
			if !math.IsFinite(pt[0], pt[1]) {
				return nil, fmt.Errorf("position %v: %w", pt, ErrDegenerateGeometry)
			}
			path[i] = geom.Point{X: pt[0], Y: pt[1]}
		}
		p = append(p, path)
	}
	return p, nil
}

// sameRings reports whether a and b consist of exactly the same rings,
// in any order. The clipper is unreliable when all edges overlap.
func sameRings(a, b Geometry) bool {
	ra, rb := a.Rings(), b.Rings()
	if len(ra) != len(rb) {
		return false
	}
	used := make([]bool, len(rb))
	for _, x := range ra {
		found := false
		for j, y := range rb {
			if !used[j] && slices.Equal(math.OpenRing(x), math.OpenRing(y)) {
				used[j], found = true, true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type candidateRing struct {
	ring  Ring // open
	area  float64
	depth int
}

// assemble turns the clipper's flat list of contours back into polygons
// with holes, based on how deeply each contour is nested inside the
// others: even depths are outer rings and odd depths are holes of the
// smallest enclosing outer ring. Outer rings are returned
// counter-clockwise and holes clockwise.
func (k ClipKernel) assemble(p geom.Polygon) Geometry {
	var rings []candidateRing
	for _, path := range p {
		r := make(Ring, 0, len(path))
		for _, pt := range path {
			ll := math.Point2LL{pt.X, pt.Y}
			if len(r) > 0 && r[len(r)-1] == ll {
				continue
			}
			r = append(r, ll)
		}
		r = Ring(math.OpenRing(r))
		if len(r) < 3 {
			continue
		}
		if a := math.Abs(math.SignedRingArea(r)); a > k.SliverArea {
			rings = append(rings, candidateRing{ring: r, area: a})
		}
	}

	// Larger rings first so that the enclosing ring of any ring precedes
	// it.
	slices.SortStableFunc(rings, func(a, b candidateRing) int {
		if a.area > b.area {
			return -1
		} else if a.area < b.area {
			return 1
		}
		return 0
	})

	parent := make([]int, len(rings))
	for i := range rings {
		parent[i] = -1
		for j := range i {
			if ringInside(rings[i].ring, rings[j].ring) {
				rings[i].depth++
				// The last (smallest) enclosing ring wins.
				parent[i] = j
			}
		}
	}

	var polys []Polygon
	polyIndex := make(map[int]int)
	for i, cr := range rings {
		if cr.depth%2 == 0 {
			polyIndex[i] = len(polys)
			polys = append(polys, Polygon{orient(cr.ring, true)})
		}
	}
	for i, cr := range rings {
		if cr.depth%2 == 1 && parent[i] != -1 {
			if pi, ok := polyIndex[parent[i]]; ok {
				polys[pi] = append(polys[pi], orient(cr.ring, false))
			}
		}
	}

	return FromPolygons(polys)
}

// ringInside reports whether the (non-crossing) ring a lies inside b. The
// clipper may produce rings that touch at vertices, so positions of a that
// are also positions of b don't vote.
func ringInside(a, b Ring) bool {
	bv := make(map[math.Point2LL]struct{}, len(b))
	for _, p := range b {
		bv[p] = struct{}{}
	}

	in, out := 0, 0
	for _, p := range a {
		if _, ok := bv[p]; ok {
			continue
		}
		if math.PointInPolygon2LL(p, b) {
			in++
		} else {
			out++
		}
	}
	return in > out
}

// orient returns the closed ring oriented counter-clockwise if ccw is set
// and clockwise otherwise.
func orient(open Ring, ccw bool) Ring {
	if len(open) == 0 {
		return nil
	}
	r := make(Ring, len(open), len(open)+1)
	copy(r, open)
	if (math.SignedRingArea(r) > 0) != ccw {
		slices.Reverse(r)
	}
	return append(r, r[0])
}
