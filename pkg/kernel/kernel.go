// Package kernel defines the abstract solid-modelling interface used to
// export animations as stacked extrusions. Implementations (sdfx, manifold) turn
// polygon rings into solids, combine them and write mesh files.
package kernel

import "github.com/chazu/twirl/pkg/shape"

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid-modelling interface.
type Kernel interface {
	// Extrude builds a prism from a closed polygon ring. The ring lies in
	// the XY plane and the prism spans z in [0, height].
	Extrude(ring []shape.Point, height float64) (Solid, error)

	// Union combines any number of solids into one.
	Union(solids ...Solid) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangles.
	ToMesh(s Solid) (*Mesh, error)

	// WriteSTL tessellates a solid and writes it as an STL file.
	WriteSTL(s Solid, path string) error
}
