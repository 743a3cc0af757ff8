// Package geom holds the small vector and polygon routines the wall
// primitive is built from. Points and vectors are gonum r3.Vec values;
// points projected onto a coordinate plane are r2.Vec values.
package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Finite reports whether every coordinate of v is a finite number.
func Finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// AllFinite reports whether every point of pts is finite. It returns the
// index of the first offending point, or -1.
func AllFinite(pts []r3.Vec) (bool, int) {
	for i, p := range pts {
		if !Finite(p) {
			return false, i
		}
	}
	return true, -1
}

// ApproxEqual compares a and b component-wise with absolute tolerance eps.
func ApproxEqual(a, b r3.Vec, eps float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) &&
		scalar.EqualWithinAbs(a.Y, b.Y, eps) &&
		scalar.EqualWithinAbs(a.Z, b.Z, eps)
}

// Lerp returns a + t(b-a).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// SegmentDistance returns the distance from p to the closed segment ab.
func SegmentDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return Distance(p, a)
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, r3.Add(a, r3.Scale(t, ab)))
}

// RingDistance returns the distance from p to the nearest edge of the
// closed ring. The last corner connects back to the first.
func RingDistance(p r3.Vec, ring []r3.Vec) float64 {
	best := math.Inf(1)
	for i := range ring {
		d := SegmentDistance(p, ring[i], ring[(i+1)%len(ring)])
		if d < best {
			best = d
		}
	}
	return best
}
