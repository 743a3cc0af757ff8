package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// DominantAxis returns the axis along which n has the largest magnitude.
// Dropping that axis gives the least distorted projection of a plane with
// normal n.
func DominantAxis(n r3.Vec) Axis {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	default:
		return AxisZ
	}
}

// Project drops one coordinate of p. The remaining pair keeps cyclic
// order (y,z), (z,x), (x,y) so a ring wound counter-clockwise about the
// dropped axis stays counter-clockwise in 2-D.
func Project(p r3.Vec, drop Axis) r2.Vec {
	switch drop {
	case AxisX:
		return r2.Vec{X: p.Y, Y: p.Z}
	case AxisY:
		return r2.Vec{X: p.Z, Y: p.X}
	default:
		return r2.Vec{X: p.X, Y: p.Y}
	}
}

// ProjectRing projects every corner of ring.
func ProjectRing(ring []r3.Vec, drop Axis) []r2.Vec {
	out := make([]r2.Vec, len(ring))
	for i, p := range ring {
		out[i] = Project(p, drop)
	}
	return out
}

// NewellNormal returns the unnormalised Newell normal of a closed ring.
// Its length is twice the ring's area and it points along the right-hand
// winding direction. Non-convex and slightly warped rings are handled.
func NewellNormal(ring []r3.Vec) r3.Vec {
	var n r3.Vec
	for i := range ring {
		cur, next := ring[i], ring[(i+1)%len(ring)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// SignedArea returns the shoelace area of a closed 2-D ring, positive
// when wound counter-clockwise.
func SignedArea(ring []r2.Vec) float64 {
	var a float64
	for i := range ring {
		a += r2.Cross(ring[i], ring[(i+1)%len(ring)])
	}
	return a / 2
}

// Contains reports whether p lies inside the closed ring using the
// crossing-number rule. Points exactly on an edge may go either way;
// callers that care test edge distance first.
func Contains(ring []r2.Vec, p r2.Vec) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// SegmentsCross reports whether segments ab and cd cross at a point
// interior to both. Touching at an endpoint or overlapping collinearly
// within eps does not count.
func SegmentsCross(a, b, c, d r2.Vec, eps float64) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}

// orient returns twice the signed area of triangle abc.
func orient(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

// Clean removes corners that are within eps of their predecessor and a
// trailing corner that repeats the first, returning the usable ring and
// the number of corners dropped.
func Clean(ring []r3.Vec, eps float64) ([]r3.Vec, int) {
	out := make([]r3.Vec, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && ApproxEqual(p, out[len(out)-1], eps) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && ApproxEqual(out[0], out[len(out)-1], eps) {
		out = out[:len(out)-1]
	}
	return out, len(ring) - len(out)
}
