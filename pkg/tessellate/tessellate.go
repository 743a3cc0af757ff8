// Package tessellate turns walls into world-space triangle meshes using a
// geometry kernel. One mesh is produced per wall: a thin slab of the
// solid surface with its apertures cut through.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/reverb/pkg/kernel"
	"github.com/chazu/reverb/pkg/wall"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultThicknessRatio sets the slab thickness, relative to the wall's
// larger in-plane extent, when no explicit thickness is given.
const DefaultThicknessRatio = 1.0 / 40

type config struct {
	thickness float64
	log       zerolog.Logger
}

// Option configures tessellation.
type Option func(*config)

// WithThickness sets an absolute slab thickness for every wall.
// Non-positive values restore the per-wall default.
func WithThickness(t float64) Option {
	return func(c *config) {
		if t > 0 {
			c.thickness = t
		} else {
			c.thickness = 0
		}
	}
}

// WithLogger sets the logger used for per-wall debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// Walls produces one triangle mesh per wall using the provided geometry
// kernel. Meshes are in world coordinates, centred on each wall's plane,
// and named after the wall (or its short key when unnamed). Walls are
// never modified.
func Walls(walls []*wall.Wall, k kernel.Kernel, opts ...Option) ([]*kernel.Mesh, error) {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	meshes := make([]*kernel.Mesh, 0, len(walls))
	for i, w := range walls {
		if w == nil {
			continue
		}
		m, err := tessellateWall(w, k, cfg)
		if err != nil {
			return nil, fmt.Errorf("tessellate: wall %d (%s): %w", i, meshName(w), err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// tessellateWall flattens w into its frame, builds the slab there and
// lifts the mesh back into world space.
func tessellateWall(w *wall.Wall, k kernel.Kernel, cfg config) (*kernel.Mesh, error) {
	f := w.Frame()
	outline := flatten(w.Boundary().Ring(), f)
	holes := make([][]r2.Vec, 0, len(w.Holes()))
	for _, h := range w.Holes() {
		holes = append(holes, flatten(h.Ring(), f))
	}

	thickness := cfg.thickness
	if thickness == 0 {
		thickness = extent(outline) * DefaultThicknessRatio
	}

	solid, err := k.Slab(outline, holes, thickness)
	if err != nil {
		return nil, fmt.Errorf("slab: %w", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}

	for i := 0; i+2 < len(mesh.Vertices); i += 3 {
		p := f.FromPlane(r2.Vec{X: float64(mesh.Vertices[i]), Y: float64(mesh.Vertices[i+1])}, float64(mesh.Vertices[i+2]))
		mesh.Vertices[i], mesh.Vertices[i+1], mesh.Vertices[i+2] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	for i := 0; i+2 < len(mesh.Normals); i += 3 {
		n := f.Direction(r3.Vec{X: float64(mesh.Normals[i]), Y: float64(mesh.Normals[i+1]), Z: float64(mesh.Normals[i+2])})
		mesh.Normals[i], mesh.Normals[i+1], mesh.Normals[i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
	mesh.Name = meshName(w)

	cfg.log.Debug().
		Str("wall", mesh.Name).
		Int("holes", len(holes)).
		Float64("thickness", thickness).
		Int("triangles", mesh.TriangleCount()).
		Msg("tessellated wall")
	return mesh, nil
}

// meshName prefers the wall's name and falls back to its short key.
func meshName(w *wall.Wall) string {
	if w.Name() != "" {
		return w.Name()
	}
	return w.Key().Short()
}

func flatten(ring []r3.Vec, f wall.Frame) []r2.Vec {
	out := make([]r2.Vec, len(ring))
	for i, p := range ring {
		out[i] = f.ToPlane(p)
	}
	return out
}

// extent returns the larger side of the ring's bounding rectangle.
func extent(ring []r2.Vec) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range ring {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}
