// math/vecmat.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// point 2

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

func Dot(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Length of v
func Length2(v [2]float64) float64 {
	return gomath.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance between two points
func Distance2(a [2]float64, b [2]float64) float64 {
	return Length2(Sub2(a, b))
}
