package wall

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func coord(t *rapid.T, label string) float64 {
	return rapid.Float64Range(-50, 50).Draw(t, label)
}

func point(t *rapid.T, label string) r3.Vec {
	return r3.Vec{X: coord(t, label+".x"), Y: coord(t, label+".y"), Z: coord(t, label+".z")}
}

// rectangle draws an axis-aligned rectangle in a z = const plane with an
// optional hole in its middle third.
func rectangle(t *rapid.T) ([]r3.Vec, [][]r3.Vec) {
	x, y, z := coord(t, "x"), coord(t, "y"), coord(t, "z")
	w := rapid.Float64Range(0.5, 20).Draw(t, "w")
	h := rapid.Float64Range(0.5, 20).Draw(t, "h")
	boundary := []r3.Vec{{X: x, Y: y, Z: z}, {X: x + w, Y: y, Z: z}, {X: x + w, Y: y + h, Z: z}, {X: x, Y: y + h, Z: z}}
	if !rapid.Bool().Draw(t, "holed") {
		return boundary, nil
	}
	hole := []r3.Vec{
		{X: x + w/3, Y: y + h/3, Z: z}, {X: x + 2*w/3, Y: y + h/3, Z: z},
		{X: x + 2*w/3, Y: y + 2*h/3, Z: z}, {X: x + w/3, Y: y + 2*h/3, Z: z},
	}
	return boundary, [][]r3.Vec{hole}
}

func TestPropertySameAsReflexive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		boundary, holes := rectangle(t)
		w1, err := New(boundary, holes)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		w2, err := New(boundary, holes)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if !w1.SameAs(w1) || !w1.SameAs(w2) || !w2.SameAs(w1) {
			t.Fatal("walls from identical data differ")
		}
		if w1.Key() != w2.Key() {
			t.Fatal("keys differ")
		}
		if holes != nil {
			bare, err := New(boundary, nil)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if w1.SameAs(bare) || bare.SameAs(w1) {
				t.Fatal("hole presence ignored")
			}
		}
	})
}

func TestPropertyIntersectionIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		boundary, holes := rectangle(t)
		w, err := New(boundary, holes)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		p0, p1 := point(t, "p0"), point(t, "p1")
		h1, ok1, err1 := w.Intersection(p0, p1)
		h2, ok2, err2 := w.Intersection(p0, p1)
		if h1 != h2 || ok1 != ok2 || err1 != err2 {
			t.Fatalf("repeated query differs: %v/%v vs %v/%v", h1, ok1, h2, ok2)
		}
		if ok1 && !h1.Endpoint {
			if side, _ := w.Side(h1.Point); side != On {
				t.Fatalf("hit %v is %v the plane", h1.Point, side)
			}
		}
	})
}

func TestPropertyHitsStraddleThePlane(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		boundary, holes := rectangle(t)
		w, err := New(boundary, holes)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		p0, p1 := point(t, "p0"), point(t, "p1")
		s0, _ := w.Side(p0)
		s1, _ := w.Side(p1)
		if s0 == s1 && s0 != On && w.Intersects(p0, p1) {
			t.Fatalf("segment entirely on the %v side hit the wall", s0)
		}
	})
}

func TestPropertyReflectTwice(t *testing.T) {
	// The plane x - z = 0.
	w, err := New([]r3.Vec{{}, {X: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {Y: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rapid.Check(t, func(t *rapid.T) {
		p := point(t, "p")
		img, s1, err := w.Reflect(p)
		if err != nil {
			t.Fatalf("Reflect: %v", err)
		}
		back, s2, err := w.Reflect(img)
		if err != nil {
			t.Fatalf("Reflect: %v", err)
		}
		if d := r3.Norm(r3.Sub(back, p)); d > 1e-9 {
			t.Fatalf("reflecting twice moved %v by %g", p, d)
		}
		if s1 != -s2 {
			t.Fatalf("image of a %v point is %v", s1, s2)
		}
	})
}
