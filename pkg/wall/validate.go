package wall

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// PolygonRef identifies a ring of wall input: BoundaryRef or a hole index.
type PolygonRef int

// BoundaryRef refers to the outer polygon.
const BoundaryRef PolygonRef = -1

func (r PolygonRef) String() string {
	if r == BoundaryRef {
		return "boundary"
	}
	return fmt.Sprintf("hole %d", int(r))
}

// Severity indicates whether a finding blocks construction.
type Severity int

const (
	SeverityError   Severity = iota // New would fail
	SeverityWarning                 // New succeeds, queries may misbehave
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError is a finding that makes New fail. Corner is -1 when the
// problem is not tied to a single corner.
type ValidationError struct {
	Polygon  PolygonRef
	Corner   int
	Message  string
	Severity Severity
	Err      error
}

func (e ValidationError) Error() string {
	if e.Corner < 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Polygon, e.Message)
	}
	return fmt.Sprintf("[%s] %s corner %d: %s", e.Severity, e.Polygon, e.Corner, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationWarning is an advisory finding. New does not check these
// conditions, so a wall built from input with warnings may answer
// intersection queries in surprising ways.
type ValidationWarning struct {
	Polygon PolygonRef
	Corner  int
	Message string
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Valid reports whether New would accept the input.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// holeErrors adds the problems each hole has on its own. It is used when
// the boundary has no plane to check the holes against.
func holeErrors(res ValidationResult, holes [][]r3.Vec, eps float64) ValidationResult {
	for hi, corners := range holes {
		if _, err := newPolygon(corners, eps); err != nil {
			res.Errors = append(res.Errors, polygonError(PolygonRef(hi), err))
		}
	}
	return res
}

// Validate checks wall input without building the wall. Unlike New it
// reports every off-plane corner rather than the first. The geometric
// warnings (repeated corners, self-intersection, holes outside the
// boundary, overlapping holes) only run when there are no errors.
func Validate(boundary []r3.Vec, holes [][]r3.Vec, opts ...Option) ValidationResult {
	cfg := newConfig(opts)
	var res ValidationResult

	outer, err := newPolygon(boundary, cfg.eps)
	if err != nil {
		res.Errors = append(res.Errors, polygonError(BoundaryRef, err))
		return holeErrors(res, holes, cfg.eps)
	}
	normal, offset, _, err := fitPlane(outer.ring, cfg.eps)
	if err != nil {
		res.Errors = append(res.Errors, polygonError(BoundaryRef, err))
		return holeErrors(res, holes, cfg.eps)
	}
	res.Errors = append(res.Errors, planeErrors(BoundaryRef, outer.corners, normal, offset, cfg.eps)...)

	drop := geom.DominantAxis(normal)
	outer.flat = geom.ProjectRing(outer.ring, drop)

	inner := make([]Polygon, 0, len(holes))
	for hi, corners := range holes {
		ref := PolygonRef(hi)
		h, err := newPolygon(corners, cfg.eps)
		if err != nil {
			res.Errors = append(res.Errors, polygonError(ref, err))
			continue
		}
		if a := r3.Norm(geom.NewellNormal(h.ring)); a <= cfg.eps*cfg.eps {
			res.Errors = append(res.Errors, polygonError(ref,
				errorsmod.Wrapf(ErrDegenerate, "area %.3g is too small", a/2)))
			continue
		}
		res.Errors = append(res.Errors, planeErrors(ref, h.corners, normal, offset, cfg.eps)...)
		h.flat = geom.ProjectRing(h.ring, drop)
		inner = append(inner, h)
	}

	if !res.Valid() {
		return res
	}

	res.Warnings = append(res.Warnings, repeatedCorners(BoundaryRef, outer)...)
	res.Warnings = append(res.Warnings, selfIntersections(BoundaryRef, outer.flat, cfg.eps)...)
	for hi, h := range inner {
		ref := PolygonRef(hi)
		res.Warnings = append(res.Warnings, repeatedCorners(ref, h)...)
		res.Warnings = append(res.Warnings, selfIntersections(ref, h.flat, cfg.eps)...)
		res.Warnings = append(res.Warnings, holeOutside(ref, h, outer, cfg.eps)...)
	}
	res.Warnings = append(res.Warnings, overlappingHoles(inner, cfg.eps)...)
	return res
}

func polygonError(ref PolygonRef, err error) ValidationError {
	return ValidationError{
		Polygon:  ref,
		Corner:   -1,
		Message:  err.Error(),
		Severity: SeverityError,
		Err:      rootSentinel(err),
	}
}

// rootSentinel unwraps err down to the registered error it wraps.
func rootSentinel(err error) error {
	for _, s := range []error{ErrInvalidNumeric, ErrDegenerate, ErrNonPlanar} {
		if errors.Is(err, s) {
			return s
		}
	}
	return err
}

func planeErrors(ref PolygonRef, corners []r3.Vec, normal r3.Vec, offset, eps float64) []ValidationError {
	var errs []ValidationError
	for i := range corners {
		j, d := offPlane(corners[i:i+1], normal, offset, eps)
		if j < 0 {
			continue
		}
		errs = append(errs, ValidationError{
			Polygon:  ref,
			Corner:   i,
			Message:  fmt.Sprintf("corner is %.3g off the plane, tolerance %.3g", d, eps),
			Severity: SeverityError,
			Err:      ErrNonPlanar,
		})
	}
	return errs
}

func repeatedCorners(ref PolygonRef, p Polygon) []ValidationWarning {
	if p.dropped == 0 {
		return nil
	}
	return []ValidationWarning{{
		Polygon: ref,
		Corner:  -1,
		Message: fmt.Sprintf("%d repeated or closing corners ignored", p.dropped),
	}}
}

// selfIntersections reports every pair of non-adjacent edges that cross.
func selfIntersections(ref PolygonRef, ring []r2.Vec, eps float64) []ValidationWarning {
	var warnings []ValidationWarning
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			if geom.SegmentsCross(a, b, ring[j], ring[(j+1)%n], eps*eps) {
				warnings = append(warnings, ValidationWarning{
					Polygon: ref,
					Corner:  i,
					Message: fmt.Sprintf("edge %d crosses edge %d", i, j),
				})
			}
		}
	}
	return warnings
}

// holeOutside reports hole corners that are not strictly inside the
// boundary and hole edges that cross it.
func holeOutside(ref PolygonRef, hole, outer Polygon, eps float64) []ValidationWarning {
	var warnings []ValidationWarning
	for i, c := range hole.ring {
		if geom.RingDistance(c, outer.ring) <= eps || !geom.Contains(outer.flat, hole.flat[i]) {
			warnings = append(warnings, ValidationWarning{
				Polygon: ref,
				Corner:  i,
				Message: "corner is not strictly inside the boundary",
			})
		}
	}
	if edgesCross(hole.flat, outer.flat, eps) {
		warnings = append(warnings, ValidationWarning{
			Polygon: ref,
			Corner:  -1,
			Message: "an edge crosses the boundary",
		})
	}
	return warnings
}

func overlappingHoles(holes []Polygon, eps float64) []ValidationWarning {
	var warnings []ValidationWarning
	for i := range holes {
		for j := i + 1; j < len(holes); j++ {
			a, b := holes[i], holes[j]
			if edgesCross(a.flat, b.flat, eps) ||
				geom.Contains(a.flat, b.flat[0]) || geom.Contains(b.flat, a.flat[0]) {
				warnings = append(warnings, ValidationWarning{
					Polygon: PolygonRef(i),
					Corner:  -1,
					Message: fmt.Sprintf("overlaps hole %d", j),
				})
			}
		}
	}
	return warnings
}

func edgesCross(p, q []r2.Vec, eps float64) bool {
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		for j := range q {
			if geom.SegmentsCross(a, b, q[j], q[(j+1)%len(q)], eps*eps) {
				return true
			}
		}
	}
	return false
}
