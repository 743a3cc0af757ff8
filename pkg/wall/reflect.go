package wall

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Side is the position of a point relative to a wall's plane.
type Side int

const (
	Back  Side = -1
	On    Side = 0
	Front Side = 1
)

func (s Side) String() string {
	switch s {
	case Back:
		return "back"
	case On:
		return "on"
	case Front:
		return "front"
	default:
		return "unknown"
	}
}

// Side classifies p against the wall's plane. Front is the side the
// normal points to. Points within epsilon of the plane are On.
func (w *Wall) Side(p r3.Vec) (Side, error) {
	if !geom.Finite(p) {
		return On, errorsmod.Wrapf(ErrInvalidNumeric, "point %v", p)
	}
	return w.side(r3.Dot(w.normal, p) - w.offset), nil
}

func (w *Wall) side(dist float64) Side {
	switch {
	case dist > w.eps:
		return Front
	case dist < -w.eps:
		return Back
	default:
		return On
	}
}

// Reflect mirrors p across the wall's plane and reports which side p was
// on. This is the image of a source in the image-source method.
func (w *Wall) Reflect(p r3.Vec) (r3.Vec, Side, error) {
	if !geom.Finite(p) {
		return r3.Vec{}, On, errorsmod.Wrapf(ErrInvalidNumeric, "point %v", p)
	}
	dist := r3.Dot(w.normal, p) - w.offset
	return r3.Sub(p, r3.Scale(2*dist, w.normal)), w.side(dist), nil
}

// NormalReflect returns the specular reflection of direction dir.
func (w *Wall) NormalReflect(dir r3.Vec) r3.Vec {
	return r3.Sub(dir, r3.Scale(2*r3.Dot(dir, w.normal), w.normal))
}

// NormalReflectFrom returns the point length units from hit along the
// reflection of the ray that travelled from start to hit.
func (w *Wall) NormalReflectFrom(start, hit r3.Vec, length float64) r3.Vec {
	dir := w.NormalReflect(r3.Sub(hit, start))
	n := r3.Norm(dir)
	if n == 0 {
		return hit
	}
	return r3.Add(hit, r3.Scale(length/n, dir))
}

// CosineAngle returns the cosine of the angle between v and the normal,
// or 0 for a zero vector.
func (w *Wall) CosineAngle(v r3.Vec) float64 {
	n := r3.Norm(v)
	if n == 0 {
		return 0
	}
	return r3.Dot(v, w.normal) / n
}
