// Package kernel defines the geometry kernel interface used to turn
// expression trees into meshes. Implementations (sdfx) bind a tree to a
// bounding box, combine the resulting solids and extract their surface.
package kernel

import "github.com/chazu/facet/pkg/tree"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Solid binds t to the box [min, max]. The surface is where t is zero
	// and the interior where t is negative.
	Solid(t tree.Tree, min, max [3]float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
