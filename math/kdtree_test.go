// math/kdtree_test.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestBuildKDTree(t *testing.T) {
	// Test empty input
	tree := BuildKDTree(nil)
	if tree != nil {
		t.Error("expected nil tree for nil input")
	}

	tree = BuildKDTree([]Point2LL{})
	if tree != nil {
		t.Error("expected nil tree for empty input")
	}

	// Test single point
	points := []Point2LL{{9.9, 53.6}}
	tree = BuildKDTree(points)
	if tree == nil {
		t.Fatal("expected non-nil tree for single point")
	}
	if tree.Location != points[0] || tree.Index != 0 {
		t.Errorf("expected location %v index 0, got %v index %d", points[0], tree.Location, tree.Index)
	}
	if tree.Left != nil || tree.Right != nil {
		t.Error("expected nil children for single-point tree")
	}
}

func TestBuildKDTreeDoesNotReorderInput(t *testing.T) {
	points := []Point2LL{{3, 3}, {1, 1}, {2, 2}}
	BuildKDTree(points)
	if points[0] != (Point2LL{3, 3}) || points[1] != (Point2LL{1, 1}) || points[2] != (Point2LL{2, 2}) {
		t.Errorf("input slice was modified: %v", points)
	}
}

func TestKDTreeNearest(t *testing.T) {
	var tree *KDNode
	if tree.Nearest(Point2LL{0, 0}) != nil {
		t.Error("expected nil result for nil tree")
	}

	// Create a grid of points
	var points []Point2LL
	for lon := 9.0; lon < 10.5; lon += 0.1 {
		for lat := 53.0; lat < 54.0; lat += 0.1 {
			points = append(points, Point2LL{lon, lat})
		}
	}
	tree = BuildKDTree(points)

	bruteForce := func(p Point2LL) int {
		best, bestDist := -1, 0.0
		for i, q := range points {
			d := DistanceMeters(p, q)
			if best == -1 || d < bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}

	for _, p := range []Point2LL{{9.03, 53.04}, {10.47, 53.96}, {9.57, 53.52}, {8.0, 52.0}, {11.0, 55.0}} {
		n := tree.Nearest(p)
		if n == nil {
			t.Fatalf("%v: no nearest point found", p)
		}
		if expected := bruteForce(p); n.Index != expected {
			t.Errorf("%v: nearest index %d (%v), expected %d (%v)", p, n.Index, n.Location, expected, points[expected])
		}
		if n.Location != points[n.Index] {
			t.Errorf("%v: node location %v doesn't match input %v", p, n.Location, points[n.Index])
		}
	}
}
