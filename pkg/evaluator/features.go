package evaluator

import (
	"math"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// maxFeatures caps the candidate set carried by any one node so that deep
// chains of ties cannot grow it without bound.
const maxFeatures = 64

// Features returns every distinct gradient direction of the tree that is
// valid at p. A smooth point yields one entry; an edge or corner yields
// one per active branch. Directions are gradients and are not normalized.
func (e *Evaluator) Features(p v3.Vec) []oracle.Feature {
	req := oracle.NewRequest([]v3.Vec{p}, e.ctx)
	e.run(req)

	sets := make([][]v3.Vec, len(e.nodes))
	for i, n := range e.nodes {
		var a, b []v3.Vec
		var va, vb float64
		if l := e.lhs[i]; l >= 0 {
			a, va = sets[l], e.values[l][0]
		}
		if r := e.rhs[i]; r >= 0 {
			b, vb = sets[r], e.values[r][0]
		}

		switch n.Op() {
		case tree.OpConst:
			sets[i] = []v3.Vec{{}}
		case tree.OpX:
			sets[i] = []v3.Vec{oracle.Unit(0, 1)}
		case tree.OpY:
			sets[i] = []v3.Vec{oracle.Unit(1, 1)}
		case tree.OpZ:
			sets[i] = []v3.Vec{oracle.Unit(2, 1)}
		case tree.OpOracle:
			for _, f := range e.oracles[i].EvalFeatures(req, nil) {
				sets[i] = appendUnique(sets[i], f.Direction)
			}
		case tree.OpNeg:
			sets[i] = scale(a, -1)
		case tree.OpAbs:
			switch {
			case va > 0:
				sets[i] = a
			case va < 0:
				sets[i] = scale(a, -1)
			default:
				sets[i] = union(a, scale(a, -1))
			}
		case tree.OpSquare:
			sets[i] = scale(a, 2*va)
		case tree.OpSqrt:
			if va > 0 {
				sets[i] = scale(a, 1/(2*math.Sqrt(va)))
			} else {
				sets[i] = []v3.Vec{{}}
			}
		case tree.OpAdd:
			sets[i] = combine(a, b, func(da, db v3.Vec) v3.Vec { return da.Add(db) })
		case tree.OpSub:
			sets[i] = combine(a, b, func(da, db v3.Vec) v3.Vec { return da.Sub(db) })
		case tree.OpMul:
			sets[i] = combine(a, b, func(da, db v3.Vec) v3.Vec {
				return da.MulScalar(vb).Add(db.MulScalar(va))
			})
		case tree.OpMax:
			sets[i] = choose(a, b, va, vb)
		case tree.OpMin:
			sets[i] = choose(a, b, -va, -vb)
		}
	}

	root := sets[len(sets)-1]
	out := make([]oracle.Feature, len(root))
	for k, d := range root {
		out[k] = oracle.Feature{Direction: d}
	}
	return out
}

// choose picks the branch with the larger value, or both on a tie.
func choose(a, b []v3.Vec, va, vb float64) []v3.Vec {
	switch {
	case va > vb:
		return a
	case vb > va:
		return b
	}
	return union(a, b)
}

func scale(a []v3.Vec, k float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(a))
	for _, d := range a {
		out = appendUnique(out, d.MulScalar(k))
	}
	return out
}

func union(a, b []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, 0, len(a)+len(b))
	for _, d := range a {
		out = appendUnique(out, d)
	}
	for _, d := range b {
		out = appendUnique(out, d)
	}
	return out
}

func combine(a, b []v3.Vec, fn func(da, db v3.Vec) v3.Vec) []v3.Vec {
	var out []v3.Vec
	for _, da := range a {
		for _, db := range b {
			out = appendUnique(out, fn(da, db))
		}
	}
	return out
}

func appendUnique(out []v3.Vec, d v3.Vec) []v3.Vec {
	if len(out) >= maxFeatures {
		return out
	}
	for _, o := range out {
		if o == d {
			return out
		}
	}
	return append(out, d)
}
