// Package evaluator is a reference batch evaluator for expression trees.
// It evaluates built-in operators directly and dispatches oracle leaves
// through the oracle contract, so a tree mixing both kinds is evaluated in
// one uniform pass.
//
// An Evaluator owns one Oracle instance per oracle leaf. It is not safe for
// concurrent use; evaluate concurrent batches with separate Evaluators.
package evaluator

import (
	"math"

	"github.com/chazu/facet/pkg/interval"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Evaluator holds the flattened tree and per-batch scratch state.
type Evaluator struct {
	root    tree.Tree
	nodes   []tree.Tree
	lhs     []int
	rhs     []int
	oracles []oracle.Oracle
	ctx     oracle.Context

	values [][]float64
}

// New flattens t and creates a fresh Oracle for every oracle leaf. ctx is
// passed to every oracle call and may be nil. It panics on the zero Tree.
func New(t tree.Tree, ctx oracle.Context) *Evaluator {
	if !t.Valid() {
		panic("evaluator: New with zero Tree")
	}
	e := &Evaluator{root: t, ctx: ctx}
	slot := make(map[tree.Tree]int)
	t.Walk(func(n tree.Tree) {
		slot[n] = len(e.nodes)
		e.nodes = append(e.nodes, n)

		l, r := -1, -1
		if c := n.LHS(); c.Valid() {
			l = slot[c]
		}
		if c := n.RHS(); c.Valid() {
			r = slot[c]
		}
		e.lhs = append(e.lhs, l)
		e.rhs = append(e.rhs, r)

		var o oracle.Oracle
		if n.Op() == tree.OpOracle {
			o = n.Clause().NewOracle()
		}
		e.oracles = append(e.oracles, o)
	})
	e.values = make([][]float64, len(e.nodes))
	return e
}

// Tree returns the evaluated tree.
func (e *Evaluator) Tree() tree.Tree {
	return e.root
}

// Interval returns an enclosure of the tree's value over box.
func (e *Evaluator) Interval(box sdf.Box3) interval.Interval {
	req := oracle.NewIntervalRequest(box, e.ctx)
	out := make([]interval.Interval, len(e.nodes))
	for i, n := range e.nodes {
		var a, b interval.Interval
		if e.lhs[i] >= 0 {
			a = out[e.lhs[i]]
		}
		if e.rhs[i] >= 0 {
			b = out[e.rhs[i]]
		}

		switch n.Op() {
		case tree.OpConst:
			out[i] = interval.Point(n.Value())
		case tree.OpX:
			out[i] = req.Interval(0)
		case tree.OpY:
			out[i] = req.Interval(1)
		case tree.OpZ:
			out[i] = req.Interval(2)
		case tree.OpOracle:
			out[i] = e.oracles[i].EvalInterval(req)
		case tree.OpNeg:
			out[i] = a.Neg()
		case tree.OpAbs:
			out[i] = a.Abs()
		case tree.OpSquare:
			out[i] = a.Square()
		case tree.OpSqrt:
			out[i] = a.Sqrt()
		case tree.OpAdd:
			out[i] = a.Add(b)
		case tree.OpSub:
			out[i] = a.Sub(b)
		case tree.OpMul:
			out[i] = a.Mul(b)
		case tree.OpMin:
			out[i] = a.Min(b)
		case tree.OpMax:
			out[i] = a.Max(b)
		}
	}
	return out[len(out)-1]
}

// Values evaluates the tree at every point. The returned slice is owned by
// the caller.
func (e *Evaluator) Values(points []v3.Vec) []float64 {
	e.run(oracle.NewRequest(points, e.ctx))
	return append([]float64(nil), e.values[len(e.nodes)-1]...)
}

// Value evaluates the tree at a single point.
func (e *Evaluator) Value(p v3.Vec) float64 {
	return e.Values([]v3.Vec{p})[0]
}

// run fills e.values for the batch in req.
func (e *Evaluator) run(req *oracle.Request) {
	count := len(req.Points)
	for i, n := range e.nodes {
		out := e.values[i]
		if cap(out) < count {
			out = make([]float64, count)
		}
		out = out[:count]

		var a, b []float64
		if e.lhs[i] >= 0 {
			a = e.values[e.lhs[i]]
		}
		if e.rhs[i] >= 0 {
			b = e.values[e.rhs[i]]
		}

		for k := 0; k < count; k++ {
			switch n.Op() {
			case tree.OpConst:
				out[k] = n.Value()
			case tree.OpX:
				out[k] = req.Points[k].X
			case tree.OpY:
				out[k] = req.Points[k].Y
			case tree.OpZ:
				out[k] = req.Points[k].Z
			case tree.OpOracle:
				out[k] = e.oracles[i].EvalPoint(req, k)
			case tree.OpNeg:
				out[k] = -a[k]
			case tree.OpAbs:
				out[k] = math.Abs(a[k])
			case tree.OpSquare:
				out[k] = a[k] * a[k]
			case tree.OpSqrt:
				out[k] = math.Sqrt(math.Max(a[k], 0))
			case tree.OpAdd:
				out[k] = a[k] + b[k]
			case tree.OpSub:
				out[k] = a[k] - b[k]
			case tree.OpMul:
				out[k] = a[k] * b[k]
			case tree.OpMin:
				out[k] = math.Min(a[k], b[k])
			case tree.OpMax:
				out[k] = math.Max(a[k], b[k])
			}
		}
		e.values[i] = out
	}
}

// Ambiguous reports, per point, whether the tree's local behavior is not
// unique there: a min/max tie, abs at zero, or an ambiguous oracle sample.
// All nodes contribute to one shared mask and only ever set bits.
func (e *Evaluator) Ambiguous(points []v3.Vec) []bool {
	req := oracle.NewRequest(points, e.ctx)
	e.run(req)
	return e.ambiguous(req)
}

// Sample evaluates values and ambiguity for points in a single pass.
func (e *Evaluator) Sample(points []v3.Vec) ([]float64, []bool) {
	req := oracle.NewRequest(points, e.ctx)
	e.run(req)
	values := append([]float64(nil), e.values[len(e.nodes)-1]...)
	return values, e.ambiguous(req)
}

// ambiguous builds the mask for the batch most recently run.
func (e *Evaluator) ambiguous(req *oracle.Request) []bool {
	mask := make([]bool, len(req.Points))
	for i, n := range e.nodes {
		switch n.Op() {
		case tree.OpOracle:
			e.oracles[i].CheckAmbiguous(req, mask)
		case tree.OpMin, tree.OpMax:
			a, b := e.values[e.lhs[i]], e.values[e.rhs[i]]
			for k := range mask {
				mask[k] = mask[k] || a[k] == b[k]
			}
		case tree.OpAbs:
			a := e.values[e.lhs[i]]
			for k := range mask {
				mask[k] = mask[k] || a[k] == 0
			}
		}
	}
	return mask
}
