// math/kdtree.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"slices"
)

// KDNode is a node in a 2D KD-tree for Point2LL. Index records the
// position of Location in the slice the tree was built from.
type KDNode struct {
	Location Point2LL
	Index    int
	Left     *KDNode
	Right    *KDNode
}

type kdEntry struct {
	p     Point2LL
	index int
}

// BuildKDTree constructs a balanced KD-tree from a slice of points.
// The tree alternates splitting by X (longitude) and Y (latitude) at each
// level. The provided slice is not modified.
func BuildKDTree(points []Point2LL) *KDNode {
	if len(points) == 0 {
		return nil
	}
	entries := make([]kdEntry, len(points))
	for i, p := range points {
		entries[i] = kdEntry{p: p, index: i}
	}
	return buildKDTreeRecursive(entries, 0)
}

func buildKDTreeRecursive(entries []kdEntry, depth int) *KDNode {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) == 1 {
		return &KDNode{Location: entries[0].p, Index: entries[0].index}
	}

	// Alternate between X (depth even) and Y (depth odd)
	axis := depth % 2

	// Sort by the splitting axis and find median
	slices.SortFunc(entries, func(a, b kdEntry) int {
		if a.p[axis] < b.p[axis] {
			return -1
		} else if a.p[axis] > b.p[axis] {
			return 1
		}
		return a.index - b.index
	})

	median := len(entries) / 2

	return &KDNode{
		Location: entries[median].p,
		Index:    entries[median].index,
		Left:     buildKDTreeRecursive(entries[:median], depth+1),
		Right:    buildKDTreeRecursive(entries[median+1:], depth+1),
	}
}

// Nearest returns the node closest to p. Distances are measured in a local
// flat-earth frame centered at p's latitude, which is accurate enough for
// picking among nearby candidates. It returns nil for an empty tree.
func (tree *KDNode) Nearest(p Point2LL) *KDNode {
	if tree == nil {
		return nil
	}

	// Scale factor applied to longitude differences so that both axes
	// have the same measure.
	lonScale := gomath.Cos(Radians(p[1]))
	dist2 := func(q Point2LL) float64 {
		return Sqr((q[0]-p[0])*lonScale) + Sqr(q[1]-p[1])
	}
	axisScale := [2]float64{lonScale, 1}

	var best *KDNode
	bestDist := gomath.Inf(1)

	var search func(n *KDNode, depth int)
	search = func(n *KDNode, depth int) {
		if n == nil {
			return
		}
		if d := dist2(n.Location); best == nil || d < bestDist || (d == bestDist && n.Index < best.Index) {
			best, bestDist = n, d
		}

		axis := depth % 2
		delta := p[axis] - n.Location[axis]
		near, far := n.Left, n.Right
		if delta > 0 {
			near, far = n.Right, n.Left
		}

		search(near, depth+1)
		// Only descend into the other side if the splitting plane is
		// closer than the best match so far.
		if Sqr(delta*axisScale[axis]) <= bestDist {
			search(far, depth+1)
		}
	}
	search(tree, 0)

	return best
}
