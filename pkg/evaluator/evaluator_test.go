package evaluator

import (
	"math"
	"testing"

	"github.com/chazu/facet/pkg/interval"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

// nativeCube builds the CubeOracle function out of built-in operators.
func nativeCube() tree.Tree {
	face := func(v tree.Tree) tree.Tree {
		return tree.Max(tree.Neg(tree.Add(v, tree.Const(1.5))), tree.Sub(v, tree.Const(1.5)))
	}
	return tree.Max(tree.Max(face(tree.X()), face(tree.Y())), face(tree.Z()))
}

func sphere(r float64) tree.Tree {
	return tree.Sub(
		tree.Sqrt(tree.Add(tree.Add(tree.Square(tree.X()), tree.Square(tree.Y())), tree.Square(tree.Z()))),
		tree.Const(r))
}

func TestValues(t *testing.T) {
	tests := []struct {
		name string
		t    tree.Tree
		p    v3.Vec
		want float64
	}{
		{"const", tree.Const(3), vec(1, 2, 3), 3},
		{"x", tree.X(), vec(1, 2, 3), 1},
		{"sum", tree.Add(tree.Y(), tree.Z()), vec(1, 2, 3), 5},
		{"product", tree.Mul(tree.X(), tree.Neg(tree.Z())), vec(2, 0, 3), -6},
		{"min", tree.Min(tree.X(), tree.Y()), vec(4, -1, 0), -1},
		{"abs", tree.Abs(tree.X()), vec(-2.5, 0, 0), 2.5},
		{"sphere", sphere(1), vec(0, 3, 4), 4},
		{"oracle cube", tree.FromOracle(oracle.CubeClause()), vec(2, 0, 0), 0.5},
		{"mixed", tree.Add(tree.FromOracle(oracle.CubeClause()), tree.X()), vec(0, 0, 0), -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.t, nil).Value(tt.p); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Value(%v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestValuesBatchReuse(t *testing.T) {
	e := New(tree.Add(tree.X(), tree.Y()), nil)
	big := e.Values([]v3.Vec{vec(1, 1, 0), vec(2, 2, 0), vec(3, 3, 0)})
	small := e.Values([]v3.Vec{vec(5, 5, 0)})
	if len(big) != 3 || len(small) != 1 {
		t.Fatalf("lengths = %d, %d", len(big), len(small))
	}
	if big[2] != 6 || small[0] != 10 {
		t.Errorf("big = %v, small = %v", big, small)
	}
}

func TestNativeCubeMatchesOracle(t *testing.T) {
	native := New(nativeCube(), nil)
	routed := New(tree.FromOracle(oracle.CubeClause()), nil)
	for x := -2.0; x <= 2.0; x += 0.5 {
		for y := -2.0; y <= 2.0; y += 0.5 {
			for z := -2.0; z <= 2.0; z += 0.5 {
				p := vec(x, y, z)
				if a, b := native.Value(p), routed.Value(p); a != b {
					t.Fatalf("at %v native %g != oracle %g", p, a, b)
				}
			}
		}
	}
}

func TestInterval(t *testing.T) {
	b := sdf.Box3{Min: vec(-1, -1, -1), Max: vec(1, 1, 1)}
	tests := []struct {
		name string
		t    tree.Tree
		want interval.Interval
	}{
		{"x", tree.X(), interval.New(-1, 1)},
		{"shifted", tree.Add(tree.X(), tree.Const(2)), interval.New(1, 3)},
		{"square", tree.Square(tree.Y()), interval.New(0, 1)},
		{"native cube", nativeCube(), interval.New(-2.5, -0.5)},
		{"oracle cube", tree.FromOracle(oracle.CubeClause()), interval.New(-2.5, -0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.t, nil).Interval(b); got != tt.want {
				t.Errorf("Interval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntervalPrunesOutside(t *testing.T) {
	e := New(sphere(1), nil)
	i := e.Interval(sdf.Box3{Min: vec(2, 2, 2), Max: vec(3, 3, 3)})
	if i.Lower <= 0 {
		t.Errorf("interval %v should be strictly positive far from the sphere", i)
	}
}

func TestAmbiguous(t *testing.T) {
	points := []v3.Vec{
		vec(1.5, 1.5, 0.2), // cube edge
		vec(1.5, 0.3, 0.2), // cube face
		vec(0, 0.3, 0.2),   // abs(x) at zero
	}
	t.Run("native", func(t *testing.T) {
		mask := New(tree.Max(nativeCube(), tree.Neg(tree.Const(10))), nil).Ambiguous(points)
		if !mask[0] || mask[1] {
			t.Errorf("mask = %v, want [true false ...]", mask)
		}
	})
	t.Run("abs", func(t *testing.T) {
		mask := New(tree.Abs(tree.X()), nil).Ambiguous(points)
		if mask[0] || mask[1] || !mask[2] {
			t.Errorf("mask = %v, want [false false true]", mask)
		}
	})
	t.Run("oracle and builtin share one mask", func(t *testing.T) {
		tr := tree.Add(tree.FromOracle(oracle.CubeClause()), tree.Abs(tree.X()))
		mask := New(tr, nil).Ambiguous(points)
		if !mask[0] || mask[1] || !mask[2] {
			t.Errorf("mask = %v, want [true false true]", mask)
		}
	})
}

func hasAll(t *testing.T, got []oracle.Feature, want ...v3.Vec) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d features %v, want %v", len(got), got, want)
	}
	for _, w := range want {
		ok := false
		for _, g := range got {
			if g.Direction == w {
				ok = true
			}
		}
		if !ok {
			t.Errorf("missing %v in %v", w, got)
		}
	}
}

func TestFeatures(t *testing.T) {
	t.Run("smooth plane", func(t *testing.T) {
		fs := New(tree.Sub(tree.X(), tree.Const(1)), nil).Features(vec(1, 0, 0))
		hasAll(t, fs, vec(1, 0, 0))
	})
	t.Run("native cube edge", func(t *testing.T) {
		fs := New(nativeCube(), nil).Features(vec(1.5, 1.5, 0.2))
		hasAll(t, fs, vec(1, 0, 0), vec(0, 1, 0))
	})
	t.Run("native cube corner", func(t *testing.T) {
		fs := New(nativeCube(), nil).Features(vec(1.5, -1.5, 1.5))
		hasAll(t, fs, vec(1, 0, 0), vec(0, -1, 0), vec(0, 0, 1))
	})
	t.Run("oracle cube corner", func(t *testing.T) {
		fs := New(tree.FromOracle(oracle.CubeClause()), nil).Features(vec(1.5, 1.5, 1.5))
		hasAll(t, fs, vec(1, 0, 0), vec(0, 1, 0), vec(0, 0, 1))
	})
	t.Run("oracle under builtin", func(t *testing.T) {
		tr := tree.Max(tree.FromOracle(oracle.CubeClause()), tree.Sub(tree.Z(), tree.Const(1)))
		fs := New(tr, nil).Features(vec(1.5, 0.2, 1))
		hasAll(t, fs, vec(1, 0, 0), vec(0, 0, 1))
	})
	t.Run("product rule", func(t *testing.T) {
		fs := New(tree.Mul(tree.X(), tree.Y()), nil).Features(vec(2, 3, 0))
		hasAll(t, fs, vec(3, 2, 0))
	})
	t.Run("abs at zero", func(t *testing.T) {
		fs := New(tree.Abs(tree.X()), nil).Features(vec(0, 1, 1))
		hasAll(t, fs, vec(1, 0, 0), vec(-1, 0, 0))
	})
}

func TestOracleInstancesPerEvaluator(t *testing.T) {
	c := &countingClause{}
	tr := tree.Add(tree.FromOracle(c), tree.FromOracle(c)).Dedupe()
	New(tr, nil)
	New(tr, nil)
	if c.made != 2 {
		t.Errorf("clause made %d oracles, want one per evaluator (2)", c.made)
	}
}

type countingClause struct{ made int }

func (c *countingClause) NewOracle() oracle.Oracle {
	c.made++
	return oracle.AxisClause(0).NewOracle()
}

func (c *countingClause) Name() string { return "Counting" }

func TestSampleMatchesSeparateCalls(t *testing.T) {
	ev := New(tree.Min(nativeCube(), tree.FromOracle(oracle.CubeClause())), oracle.NewMemo())
	points := []v3.Vec{vec(0, 0, 0), vec(1.5, 1.5, 0), vec(2, 0.5, -1), vec(-1.5, 0, 0)}

	values, mask := ev.Sample(points)
	wantValues := ev.Values(points)
	wantMask := ev.Ambiguous(points)
	for i := range points {
		if values[i] != wantValues[i] {
			t.Errorf("value %d = %g, want %g", i, values[i], wantValues[i])
		}
		if mask[i] != wantMask[i] {
			t.Errorf("ambiguous %d = %t, want %t", i, mask[i], wantMask[i])
		}
	}
}

func TestNewPanicsOnZeroTree(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero Tree")
		}
	}()
	New(tree.Tree{}, nil)
}

// A translated oracle must agree with the same translation applied to
// the native cube.
func TestTranslatedOracleMatchesNative(t *testing.T) {
	by := vec(0.5, -1, 2)
	native := New(nativeCube().Remap(
		tree.Sub(tree.X(), tree.Const(by.X)),
		tree.Sub(tree.Y(), tree.Const(by.Y)),
		tree.Sub(tree.Z(), tree.Const(by.Z)),
	), nil)
	routed := New(tree.FromOracle(oracle.Translate(oracle.CubeClause(), by)), nil)

	var points []v3.Vec
	for x := -2.0; x <= 3.0; x += 0.5 {
		for y := -3.0; y <= 1.0; y += 0.5 {
			for z := -1.0; z <= 4.0; z += 0.5 {
				points = append(points, vec(x, y, z))
			}
		}
	}
	nv, rv := native.Values(points), routed.Values(points)
	for i, p := range points {
		if nv[i] != rv[i] {
			t.Fatalf("at %v native %g != oracle %g", p, nv[i], rv[i])
		}
	}

	b := sdf.Box3{Min: vec(-1, -2, 1), Max: vec(1, 0, 3)}
	if n, r := native.Interval(b), routed.Interval(b); n != r {
		t.Errorf("Interval over %v: native %v, oracle %v", b, n, r)
	}
}
