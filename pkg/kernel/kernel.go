// Package kernel defines the abstract geometry kernel interface used to
// turn walls into renderable solids. Implementations (sdfx) provide the
// slab construction and meshing behind this interface so the rest of the
// system never touches a CAD library directly.
package kernel

import "gonum.org/v1/gonum/spatial/r2"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Slab extrudes the region inside outline and outside every hole to
	// the given thickness. The slab is centred on z=0 and rings are in the
	// xy plane. Winding is not significant.
	Slab(outline []r2.Vec, holes [][]r2.Vec, thickness float64) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
