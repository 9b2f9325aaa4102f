// Package oracletest provides conformance helpers for oracle
// implementations: routing a tree's coordinates through axis oracles and
// checking the contract rules that cannot be asserted at runtime.
package oracletest

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/chazu/facet/pkg/evaluator"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ConvertToOracleAxes replaces the X, Y and Z leaves of t with leaves
// backed by the axis passthrough oracles.
func ConvertToOracleAxes(t tree.Tree) tree.Tree {
	return t.Remap(
		tree.FromOracle(oracle.AxisClause(0)),
		tree.FromOracle(oracle.AxisClause(1)),
		tree.FromOracle(oracle.AxisClause(2)),
	)
}

// gridValues spans negative, zero and positive coordinates.
var gridValues = []float64{-2, -1.5, -0.75, -0.25, 0, 0.25, 0.75, 1.5, 2}

// GridPoints returns a deterministic grid of sample points covering
// negative, zero and positive values on every axis.
func GridPoints() []v3.Vec {
	points := make([]v3.Vec, 0, len(gridValues)*len(gridValues)*len(gridValues))
	for _, x := range gridValues {
		for _, y := range gridValues {
			for _, z := range gridValues {
				points = append(points, v3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return points
}

// Compare evaluates t natively and with its coordinates routed through
// axis oracles, and returns an error describing the first difference in
// values, ambiguity or features over points, or the interval over box.
func Compare(t tree.Tree, points []v3.Vec, box sdf.Box3) error {
	native := evaluator.New(t, nil)
	routed := evaluator.New(ConvertToOracleAxes(t), nil)

	nv, rv := native.Values(points), routed.Values(points)
	for i := range points {
		if nv[i] != rv[i] {
			return fmt.Errorf("value at %v: native %g, oracle %g", points[i], nv[i], rv[i])
		}
	}

	na, ra := native.Ambiguous(points), routed.Ambiguous(points)
	for i := range points {
		if na[i] != ra[i] {
			return fmt.Errorf("ambiguity at %v: native %t, oracle %t", points[i], na[i], ra[i])
		}
	}

	for _, p := range points {
		nf, rf := native.Features(p), routed.Features(p)
		if len(nf) != len(rf) {
			return fmt.Errorf("features at %v: native %v, oracle %v", p, nf, rf)
		}
		for k := range nf {
			if nf[k] != rf[k] {
				return fmt.Errorf("feature %d at %v: native %v, oracle %v", k, p, nf[k], rf[k])
			}
		}
	}

	if ni, ri := native.Interval(box), routed.Interval(box); ni != ri {
		return fmt.Errorf("interval over %v: native %v, oracle %v", box, ni, ri)
	}
	return nil
}

// CheckContract exercises c over random sub-boxes of box and fails tb on
// any contract violation: a point value escaping its box's interval, an
// ambiguity pass clearing a set bit, or a feature pass dropping entries.
func CheckContract(tb testing.TB, c oracle.Clause, box sdf.Box3, seed int64) {
	tb.Helper()

	if a, b := c.Name(), c.Name(); a != b {
		tb.Fatalf("%T: Name() not deterministic: %q then %q", c, a, b)
	}

	rng := rand.New(rand.NewSource(seed))
	size := box.Size()
	pick := func(lo, hi v3.Vec) v3.Vec {
		return v3.Vec{
			X: lo.X + rng.Float64()*(hi.X-lo.X),
			Y: lo.Y + rng.Float64()*(hi.Y-lo.Y),
			Z: lo.Z + rng.Float64()*(hi.Z-lo.Z),
		}
	}

	for n := 0; n < 32; n++ {
		lo := pick(box.Min, box.Max)
		hi := lo.Add(v3.Vec{
			X: rng.Float64() * size.X / 4,
			Y: rng.Float64() * size.Y / 4,
			Z: rng.Float64() * size.Z / 4,
		})
		cell := sdf.Box3{Min: lo, Max: hi}

		points := make([]v3.Vec, 16)
		for i := range points {
			points[i] = pick(lo, hi)
		}

		o := c.NewOracle()
		bound := o.EvalInterval(oracle.NewIntervalRequest(cell, nil))
		req := &oracle.Request{Points: points, Bounds: cell}
		for i := range points {
			if v := o.EvalPoint(req, i); !bound.Contains(v) {
				tb.Fatalf("%s: value %g at %v escapes interval %v over %v", c.Name(), v, points[i], bound, cell)
			}
		}

		mask := make([]bool, len(points))
		for i := range mask {
			mask[i] = true
		}
		o.CheckAmbiguous(req, mask)
		for i, set := range mask {
			if !set {
				tb.Fatalf("%s: CheckAmbiguous cleared bit %d", c.Name(), i)
			}
		}

		sentinel := oracle.Feature{Direction: v3.Vec{X: 42, Y: 42, Z: 42}}
		fs := o.EvalFeatures(&oracle.Request{Points: points[:1], Bounds: cell}, []oracle.Feature{sentinel})
		if len(fs) < 2 || fs[0] != sentinel {
			tb.Fatalf("%s: EvalFeatures must append at least one feature and keep existing ones, got %v", c.Name(), fs)
		}
	}
}
