// Package wall implements the planar wall primitive of the acoustic
// simulator: a flat polygon boundary with zero or more polygonal holes,
// and the segment intersection, side and reflection queries that ray
// tracing and image-source computation run against it.
//
// A Wall is immutable once built. Any number of goroutines may query the
// same Wall concurrently without synchronization.
package wall

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Wall is a finite planar surface with apertures.
type Wall struct {
	name     string
	eps      float64
	boundary Polygon
	holes    []Polygon
	normal   r3.Vec
	offset   float64
	drop     geom.Axis
	frame    Frame
	area     float64
	key      Key
}

// New builds a wall from its boundary corners and the corners of each
// hole, in order. Holes are assumed to lie inside the boundary and not to
// overlap one another; use Validate to check that.
//
// The plane is fitted to the boundary with Newell's method. Every
// boundary and hole corner must lie within epsilon of it.
func New(boundary []r3.Vec, holes [][]r3.Vec, opts ...Option) (*Wall, error) {
	cfg := newConfig(opts)

	outer, err := newPolygon(boundary, cfg.eps)
	if err != nil {
		return nil, errorsmod.Wrap(err, "boundary")
	}
	normal, offset, twiceArea, err := fitPlane(outer.ring, cfg.eps)
	if err != nil {
		return nil, errorsmod.Wrap(err, "boundary")
	}
	if i, d := offPlane(outer.corners, normal, offset, cfg.eps); i >= 0 {
		return nil, errorsmod.Wrapf(ErrNonPlanar, "boundary corner %d is %.3g off the plane", i, d)
	}

	drop := geom.DominantAxis(normal)
	outer.flat = geom.ProjectRing(outer.ring, drop)

	w := &Wall{
		name:     cfg.name,
		eps:      cfg.eps,
		boundary: outer,
		holes:    make([]Polygon, 0, len(holes)),
		normal:   normal,
		offset:   offset,
		drop:     drop,
		frame:    newFrame(outer.ring, normal),
		area:     twiceArea / 2,
	}

	for hi, corners := range holes {
		h, err := newPolygon(corners, cfg.eps)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "hole %d", hi)
		}
		hn := geom.NewellNormal(h.ring)
		if r3.Norm(hn) <= cfg.eps*cfg.eps {
			return nil, errorsmod.Wrapf(ErrDegenerate, "hole %d: area %.3g is too small", hi, r3.Norm(hn)/2)
		}
		if i, d := offPlane(h.corners, normal, offset, cfg.eps); i >= 0 {
			return nil, errorsmod.Wrapf(ErrNonPlanar, "hole %d corner %d is %.3g off the boundary plane", hi, i, d)
		}
		h.flat = geom.ProjectRing(h.ring, drop)
		w.area -= math.Abs(r3.Dot(hn, normal)) / 2
		w.holes = append(w.holes, h)
	}

	w.key = structuralKey(w)
	return w, nil
}

// Name returns the wall's label, if any.
func (w *Wall) Name() string { return w.name }

// Epsilon returns the tolerance the wall was built with.
func (w *Wall) Epsilon() float64 { return w.eps }

// Boundary returns the outer polygon.
func (w *Wall) Boundary() Polygon { return w.boundary }

// Holes returns the hole polygons in construction order.
func (w *Wall) Holes() []Polygon {
	out := make([]Polygon, len(w.holes))
	copy(out, w.holes)
	return out
}

// Normal returns the unit plane normal. The boundary winds
// counter-clockwise around it.
func (w *Wall) Normal() r3.Vec { return w.normal }

// Offset returns d in the plane equation dot(Normal(), p) == d.
func (w *Wall) Offset() float64 { return w.offset }

// Origin returns the first boundary corner.
func (w *Wall) Origin() r3.Vec { return w.boundary.corners[0] }

// Frame returns an orthonormal frame lying in the wall's plane.
func (w *Wall) Frame() Frame { return w.frame }

// Area returns the boundary area minus the area of every hole.
func (w *Wall) Area() float64 { return w.area }

// SameAs reports structural equality: the same number of boundary
// corners with exactly equal coordinates in the same order, and the same
// number of holes with each hole equal to its counterpart under the same
// rule. A rotated corner list, reordered holes or a mirrored polygon are
// different walls even when they describe the same surface. The name
// and epsilon do not take part.
func (w *Wall) SameAs(other *Wall) bool {
	if w == nil || other == nil {
		return false
	}
	if !w.boundary.sameAs(other.boundary) {
		return false
	}
	if len(w.holes) != len(other.holes) {
		return false
	}
	for i := range w.holes {
		if !w.holes[i].sameAs(other.holes[i]) {
			return false
		}
	}
	return true
}

// Frame is a right-handed orthonormal basis anchored on a wall: U and V
// span the plane and N is the wall normal.
type Frame struct {
	Origin  r3.Vec
	U, V, N r3.Vec
}

// newFrame anchors U on the edge of ring with the longest in-plane
// extent, so an edge that runs along the normal within tolerance never
// picks the direction. The first such edge wins a tie.
func newFrame(ring []r3.Vec, normal r3.Vec) Frame {
	var u r3.Vec
	var best float64
	for i, p := range ring {
		e := r3.Sub(ring[(i+1)%len(ring)], p)
		e = r3.Sub(e, r3.Scale(r3.Dot(e, normal), normal))
		if n := r3.Norm(e); n > best {
			best, u = n, r3.Scale(1/n, e)
		}
	}
	return Frame{
		Origin: ring[0],
		U:      u,
		V:      r3.Cross(normal, u),
		N:      normal,
	}
}

// ToPlane returns the in-plane coordinates of p.
func (f Frame) ToPlane(p r3.Vec) r2.Vec {
	d := r3.Sub(p, f.Origin)
	return r2.Vec{X: r3.Dot(d, f.U), Y: r3.Dot(d, f.V)}
}

// FromPlane returns the world point at in-plane coordinates q, lifted h
// along the normal.
func (f Frame) FromPlane(q r2.Vec, h float64) r3.Vec {
	return r3.Add(f.Origin, f.Direction(r3.Vec{X: q.X, Y: q.Y, Z: h}))
}

// Direction maps a direction given in (U, V, N) components to world space.
func (f Frame) Direction(local r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(local.X, f.U), r3.Scale(local.Y, f.V)), r3.Scale(local.Z, f.N))
}
