package wall

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hit describes where a segment crosses the solid part of a wall.
type Hit struct {
	Point r3.Vec
	// T is the segment parameter of Point, clamped to [0, 1].
	T float64
	// Endpoint is set when Point lies within epsilon of either end of the
	// segment.
	Endpoint bool
	// Boundary is set when Point lies within epsilon of the boundary or of
	// a hole edge.
	Boundary bool
}

// Intersection tests the segment p0-p1 against the wall. A segment that
// moves no more than epsilon along the normal is parallel. A segment that
// is parallel to the plane, stops short of it, or crosses it outside the
// boundary or strictly inside a hole is a miss: ok is false and err is
// nil. Points within epsilon of an edge count as solid, including hole
// edges.
//
// Only non-finite input is an error.
func (w *Wall) Intersection(p0, p1 r3.Vec) (Hit, bool, error) {
	if !geom.Finite(p0) || !geom.Finite(p1) {
		return Hit{}, false, errorsmod.Wrapf(ErrInvalidNumeric, "segment %v -> %v", p0, p1)
	}

	d := r3.Sub(p1, p0)
	length := r3.Norm(d)
	denom := r3.Dot(w.normal, d)
	if length == 0 || math.Abs(denom) <= w.eps {
		return Hit{}, false, nil
	}

	t := (w.offset - r3.Dot(w.normal, p0)) / denom
	slack := w.eps / length
	if t < -slack || t > 1+slack {
		return Hit{}, false, nil
	}

	hit := Hit{
		T:        math.Min(math.Max(t, 0), 1),
		Endpoint: math.Abs(t)*length <= w.eps || math.Abs(1-t)*length <= w.eps,
	}
	hit.Point = geom.Lerp(p0, p1, hit.T)

	onEdge, inside := w.locate(hit.Point)
	if !inside {
		return Hit{}, false, nil
	}
	hit.Boundary = onEdge
	return hit, true, nil
}

// Intersect returns the point where the segment p0-p1 crosses the solid
// part of the wall.
func (w *Wall) Intersect(p0, p1 r3.Vec) (r3.Vec, bool, error) {
	h, ok, err := w.Intersection(p0, p1)
	return h.Point, ok, err
}

// Intersects reports whether the segment p0-p1 crosses the solid part of
// the wall. Non-finite input never intersects.
func (w *Wall) Intersects(p0, p1 r3.Vec) bool {
	_, ok, err := w.Intersection(p0, p1)
	return ok && err == nil
}

// locate classifies an in-plane point. inside is false when the point is
// off the solid surface; onEdge is set when it is within epsilon of any
// ring, in which case it is always inside.
func (w *Wall) locate(p r3.Vec) (onEdge, inside bool) {
	if geom.RingDistance(p, w.boundary.ring) <= w.eps {
		return true, true
	}
	q := geom.Project(p, w.drop)
	if !geom.Contains(w.boundary.flat, q) {
		return false, false
	}
	for _, h := range w.holes {
		if geom.RingDistance(p, h.ring) <= w.eps {
			return true, true
		}
		if geom.Contains(h.flat, q) {
			return false, false
		}
	}
	return false, true
}
