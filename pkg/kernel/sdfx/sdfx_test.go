package sdfx

import (
	"math"
	"sync"
	"testing"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	lo = [3]float64{-2, -2, -2}
	hi = [3]float64{2, 2, 2}
)

func sphere(r float64) tree.Tree {
	return tree.Sub(
		tree.Sqrt(tree.Add(tree.Add(tree.Square(tree.X()), tree.Square(tree.Y())), tree.Square(tree.Z()))),
		tree.Const(r))
}

func cube() tree.Tree {
	return tree.FromOracle(oracle.CubeClause())
}

func checkMesh(t *testing.T, k *SdfxKernel, tr tree.Tree) []v3.Vec {
	t.Helper()
	s, err := k.Solid(tr, lo, hi)
	if err != nil {
		t.Fatalf("Solid failed: %v", err)
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 || mesh.VertexCount() != len(mesh.Indices) {
		t.Fatalf("indices length %d inconsistent with %d vertices", len(mesh.Indices), mesh.VertexCount())
	}

	out := make([]v3.Vec, 0, mesh.VertexCount())
	for i := 0; i < len(mesh.Vertices); i += 3 {
		out = append(out, v3.Vec{
			X: float64(mesh.Vertices[i]),
			Y: float64(mesh.Vertices[i+1]),
			Z: float64(mesh.Vertices[i+2]),
		})
	}
	return out
}

func TestSphereMesh(t *testing.T) {
	k := New(40, nil)
	verts := checkMesh(t, k, sphere(1))

	// Vertices sit on cell edges crossing the surface, each about 0.1 long.
	const tol = 0.11
	for _, v := range verts {
		if r := v.Length(); math.Abs(r-1) > tol {
			t.Fatalf("vertex %v at radius %f, want ~1", v, r)
		}
	}
	t.Logf("sphere vertex count: %d", len(verts))
}

func TestCubeOracleMesh(t *testing.T) {
	k := New(40, oracle.NewMemo())
	verts := checkMesh(t, k, cube())

	const tol = 0.11
	for _, v := range verts {
		m := math.Max(math.Max(math.Abs(v.X), math.Abs(v.Y)), math.Abs(v.Z))
		if math.Abs(m-oracle.CubeHalfWidth) > tol {
			t.Fatalf("vertex %v at max-norm %f, want ~%g", v, m, oracle.CubeHalfWidth)
		}
	}
}

func TestDifference(t *testing.T) {
	k := New(40, nil)

	c, err := k.Solid(cube(), lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	s, err := k.Solid(sphere(1.2), lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	cubeMesh, err := k.ToMesh(c)
	if err != nil {
		t.Fatalf("ToMesh(cube) failed: %v", err)
	}
	diffMesh, err := k.ToMesh(k.Difference(c, s))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// Carving a sphere out of the cube adds an inner surface.
	if diffMesh.TriangleCount() <= cubeMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than cube (%d triangles)",
			diffMesh.TriangleCount(), cubeMesh.TriangleCount())
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(32, nil)
	a, _ := k.Solid(sphere(1), lo, hi)
	b, _ := k.Solid(sphere(1).Remap(tree.Sub(tree.X(), tree.Const(0.8)), tree.Y(), tree.Z()), lo, hi)

	u, err := k.ToMesh(k.Union(a, b))
	if err != nil {
		t.Fatalf("ToMesh(union) failed: %v", err)
	}
	i, err := k.ToMesh(k.Intersection(a, b))
	if err != nil {
		t.Fatalf("ToMesh(intersection) failed: %v", err)
	}
	if u.IsEmpty() || i.IsEmpty() {
		t.Fatal("boolean mesh is empty")
	}

	umin, umax := u.Bounds()
	imin, imax := i.Bounds()
	if umax[0]-umin[0] <= imax[0]-imin[0] {
		t.Errorf("union X extent %f should exceed intersection X extent %f",
			umax[0]-umin[0], imax[0]-imin[0])
	}
}

func TestBoundingBox(t *testing.T) {
	k := New(0, nil)
	if k.cells != DefaultMeshCells {
		t.Errorf("cells = %d, want %d", k.cells, DefaultMeshCells)
	}
	s, err := k.Solid(cube(), [3]float64{-3, -2, -1}, [3]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{-3, -2, -1} || max != [3]float64{1, 2, 3} {
		t.Errorf("BoundingBox() = %v, %v", min, max)
	}
}

func TestShapeErrors(t *testing.T) {
	box := sdf.Box3{Min: v3.Vec{X: -1, Y: -1, Z: -1}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	if _, err := NewShape(tree.Tree{}, box, nil); err == nil {
		t.Error("expected error for empty tree")
	}
	flat := sdf.Box3{Min: v3.Vec{X: -1, Y: -1}, Max: v3.Vec{X: 1, Y: 1}}
	if _, err := NewShape(cube(), flat, nil); err == nil {
		t.Error("expected error for degenerate bounds")
	}
	s, _ := NewShape(cube(), box, nil)
	if _, err := Mesh(s, 0); err == nil {
		t.Error("expected error for zero cells")
	}
}

func TestShapeConcurrentEvaluate(t *testing.T) {
	box := sdf.Box3{Min: v3.Vec{X: -2, Y: -2, Z: -2}, Max: v3.Vec{X: 2, Y: 2, Z: 2}}
	s, err := NewShape(tree.Min(cube(), sphere(1)), box, oracle.NewMemo())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				x := float64(g*100+i)/400 - 1
				want := math.Min(math.Max(math.Abs(x)-1.5, -1.5), math.Abs(x)-1)
				if got := s.Evaluate(v3.Vec{X: x}); math.Abs(got-want) > 1e-12 {
					t.Errorf("Evaluate(%g) = %g, want %g", x, got, want)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
