package wall

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Polygon is one ring of a wall. It keeps the corners exactly as they were
// supplied, which is what structural equality compares, alongside the
// cleaned ring the geometry runs on.
type Polygon struct {
	corners []r3.Vec
	ring    []r3.Vec // closing and repeated corners removed
	flat    []r2.Vec // ring projected along the wall's drop axis
	dropped int
}

// Corners returns a copy of the corners as supplied.
func (p Polygon) Corners() []r3.Vec {
	out := make([]r3.Vec, len(p.corners))
	copy(out, p.corners)
	return out
}

// Ring returns a copy of the cleaned ring: no closing corner and no two
// consecutive corners within epsilon of each other.
func (p Polygon) Ring() []r3.Vec {
	out := make([]r3.Vec, len(p.ring))
	copy(out, p.ring)
	return out
}

// Len returns the number of corners as supplied.
func (p Polygon) Len() int {
	return len(p.corners)
}

// sameAs compares corner count and every coordinate exactly, in order.
func (p Polygon) sameAs(o Polygon) bool {
	if len(p.corners) != len(o.corners) {
		return false
	}
	for i := range p.corners {
		if p.corners[i] != o.corners[i] {
			return false
		}
	}
	return true
}

// newPolygon copies corners and builds the cleaned ring.
func newPolygon(corners []r3.Vec, eps float64) (Polygon, error) {
	if ok, i := geom.AllFinite(corners); !ok {
		return Polygon{}, errorsmod.Wrapf(ErrInvalidNumeric, "corner %d is %v", i, corners[i])
	}
	ring, dropped := geom.Clean(corners, eps)
	if len(ring) < 3 {
		return Polygon{}, errorsmod.Wrapf(ErrDegenerate, "%d distinct corners, need at least 3", len(ring))
	}
	p := Polygon{
		corners: make([]r3.Vec, len(corners)),
		ring:    ring,
		dropped: dropped,
	}
	copy(p.corners, corners)
	return p, nil
}

// fitPlane returns the unit Newell normal of ring and the mean offset of
// its corners along it, along with twice the ring's area.
func fitPlane(ring []r3.Vec, eps float64) (normal r3.Vec, offset, twiceArea float64, err error) {
	nn := geom.NewellNormal(ring)
	twiceArea = r3.Norm(nn)
	if twiceArea <= eps*eps {
		return r3.Vec{}, 0, twiceArea, errorsmod.Wrapf(ErrDegenerate, "area %.3g is too small", twiceArea/2)
	}
	normal = r3.Scale(1/twiceArea, nn)
	dots := make([]float64, len(ring))
	for i, p := range ring {
		dots[i] = r3.Dot(normal, p)
	}
	return normal, stat.Mean(dots, nil), twiceArea, nil
}

// offPlane returns the first corner further than eps from the plane
// dot(normal, p) == offset, with its distance. The index is -1 when every
// corner is within tolerance.
func offPlane(corners []r3.Vec, normal r3.Vec, offset, eps float64) (int, float64) {
	for i, p := range corners {
		if d := math.Abs(r3.Dot(normal, p) - offset); d > eps {
			return i, d
		}
	}
	return -1, 0
}
