// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Expression trees are
// exposed to sdfx as sdf.SDF3 values and meshed with marching cubes.
package sdfx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/facet/pkg/evaluator"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel = (*SdfxKernel)(nil)
	_ sdf.SDF3      = (*Shape)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// Shape adapts an expression tree to sdf.SDF3. Evaluators are pooled, so a
// Shape may be evaluated from several goroutines at once.
type Shape struct {
	t    tree.Tree
	box  sdf.Box3
	pool sync.Pool
}

// NewShape binds t to box. ctx is shared by every oracle call and may be nil.
func NewShape(t tree.Tree, box sdf.Box3, ctx oracle.Context) (*Shape, error) {
	if !t.Valid() {
		return nil, errors.New("sdfx: empty tree")
	}
	size := box.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("sdfx: degenerate bounds %v", size)
	}
	s := &Shape{t: t, box: box}
	s.pool.New = func() any { return evaluator.New(t, ctx) }
	return s, nil
}

// Evaluate returns the tree's value at p.
func (s *Shape) Evaluate(p v3.Vec) float64 {
	ev := s.pool.Get().(*evaluator.Evaluator)
	defer s.pool.Put(ev)
	return ev.Value(p)
}

// BoundingBox returns the box the shape was bound to.
func (s *Shape) BoundingBox() sdf.Box3 {
	return s.box
}

// Tree returns the bound tree.
func (s *Shape) Tree() tree.Tree {
	return s.t
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
	ctx   oracle.Context
}

// New returns a kernel meshing with the given number of marching cubes
// cells along the longest axis. Non-positive cells means DefaultMeshCells.
// ctx is shared by every shape the kernel creates and may be nil.
func New(cells int, ctx oracle.Context) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells, ctx: ctx}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Solid binds t to the box [min, max].
func (k *SdfxKernel) Solid(t tree.Tree, min, max [3]float64) (kernel.Solid, error) {
	box := sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
	s, err := NewShape(t, box, k.ctx)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return Mesh(unwrap(s), k.cells)
}

// Mesh runs uniform marching cubes over s and flattens the triangles.
// Each triangle gets three unshared vertices carrying its face normal.
func Mesh(s sdf.SDF3, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("sdfx: mesh cells must be positive, got %d", cells)
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
