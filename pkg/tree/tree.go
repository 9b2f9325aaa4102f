package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/oracle"
)

type node struct {
	op     Op
	value  float64
	clause oracle.Clause
	lhs    *node
	rhs    *node
}

// Tree is a handle to an immutable expression node. Trees are comparable:
// two handles are == when they refer to the same shared node.
type Tree struct {
	n *node
}

// X returns the X coordinate leaf.
func X() Tree { return Tree{&node{op: OpX}} }

// Y returns the Y coordinate leaf.
func Y() Tree { return Tree{&node{op: OpY}} }

// Z returns the Z coordinate leaf.
func Z() Tree { return Tree{&node{op: OpZ}} }

// Const returns a constant leaf.
func Const(v float64) Tree { return Tree{&node{op: OpConst, value: v}} }

// FromOracle returns a leaf evaluated by clause. Leaves built from the
// same clause value share it.
func FromOracle(c oracle.Clause) Tree {
	if c == nil {
		panic("tree: nil oracle clause")
	}
	return Tree{&node{op: OpOracle, clause: c}}
}

// Unary builds a one-child node. It panics if op is not unary.
func Unary(op Op, a Tree) Tree {
	if op.Arity() != 1 {
		panic(fmt.Sprintf("tree: %s is not a unary op", op))
	}
	a.mustValid()
	return Tree{&node{op: op, lhs: a.n}}
}

// Binary builds a two-child node. It panics if op is not binary.
func Binary(op Op, a, b Tree) Tree {
	if op.Arity() != 2 {
		panic(fmt.Sprintf("tree: %s is not a binary op", op))
	}
	a.mustValid()
	b.mustValid()
	return Tree{&node{op: op, lhs: a.n, rhs: b.n}}
}

func Neg(a Tree) Tree    { return Unary(OpNeg, a) }
func Abs(a Tree) Tree    { return Unary(OpAbs, a) }
func Square(a Tree) Tree { return Unary(OpSquare, a) }
func Sqrt(a Tree) Tree   { return Unary(OpSqrt, a) }
func Add(a, b Tree) Tree { return Binary(OpAdd, a, b) }
func Sub(a, b Tree) Tree { return Binary(OpSub, a, b) }
func Mul(a, b Tree) Tree { return Binary(OpMul, a, b) }
func Min(a, b Tree) Tree { return Binary(OpMin, a, b) }
func Max(a, b Tree) Tree { return Binary(OpMax, a, b) }

func (t Tree) mustValid() {
	if t.n == nil {
		panic("tree: use of zero Tree")
	}
}

// Valid reports whether t refers to a node. The zero Tree is invalid.
func (t Tree) Valid() bool { return t.n != nil }

// Op returns the node kind.
func (t Tree) Op() Op { return t.n.op }

// Value returns the constant of an OpConst node.
func (t Tree) Value() float64 { return t.n.value }

// Clause returns the clause of an OpOracle node, or nil.
func (t Tree) Clause() oracle.Clause { return t.n.clause }

// LHS returns the first child, or the zero Tree for leaves.
func (t Tree) LHS() Tree { return Tree{t.n.lhs} }

// RHS returns the second child, or the zero Tree for leaves and unary nodes.
func (t Tree) RHS() Tree { return Tree{t.n.rhs} }

// Walk visits every distinct node once in post-order (children before
// parents). Shared subtrees are visited a single time.
func (t Tree) Walk(fn func(Tree)) {
	seen := make(map[*node]bool)
	var visit func(n *node)
	visit = func(n *node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		visit(n.lhs)
		visit(n.rhs)
		fn(Tree{n})
	}
	visit(t.n)
}

// Size returns the number of distinct nodes.
func (t Tree) Size() int {
	n := 0
	t.Walk(func(Tree) { n++ })
	return n
}

// Remap returns a tree with every X, Y and Z leaf replaced by x, y and z.
// Sharing in the original is preserved in the result. Oracle leaves read
// the sample points directly and are not affected; see MapOracles.
func (t Tree) Remap(x, y, z Tree) Tree {
	t.mustValid()
	x.mustValid()
	y.mustValid()
	z.mustValid()

	return t.rewrite(func(n *node) *node {
		switch n.op {
		case OpX:
			return x.n
		case OpY:
			return y.n
		case OpZ:
			return z.n
		}
		return nil
	})
}

// MapOracles returns a tree with every oracle leaf's clause replaced by
// fn(clause). Leaves whose clause keeps its name are kept as they are.
func (t Tree) MapOracles(fn func(oracle.Clause) oracle.Clause) Tree {
	t.mustValid()

	return t.rewrite(func(n *node) *node {
		if n.op != OpOracle {
			return nil
		}
		c := fn(n.clause)
		if c == nil {
			panic("tree: MapOracles produced a nil clause")
		}
		if c.Name() == n.clause.Name() {
			return n
		}
		return &node{op: OpOracle, clause: c}
	})
}

// rewrite rebuilds t bottom-up. leaf returns a replacement for a leaf node,
// or nil to keep it; interior nodes are copied only when a child changed.
func (t Tree) rewrite(leaf func(n *node) *node) Tree {
	done := make(map[*node]*node)
	var visit func(n *node) *node
	visit = func(n *node) *node {
		if n == nil {
			return nil
		}
		if out, ok := done[n]; ok {
			return out
		}
		out := n
		if n.lhs == nil && n.rhs == nil {
			if r := leaf(n); r != nil {
				out = r
			}
		} else if lhs, rhs := visit(n.lhs), visit(n.rhs); lhs != n.lhs || rhs != n.rhs {
			out = &node{op: n.op, value: n.value, clause: n.clause, lhs: lhs, rhs: rhs}
		}
		done[n] = out
		return out
	}
	return Tree{visit(t.n)}
}

type internKey struct {
	op     Op
	value  uint64
	clause string
	lhs    *node
	rhs    *node
}

// Dedupe returns an equivalent tree in which structurally identical
// subtrees are a single shared node. Oracle leaves are identified by their
// clause name.
func (t Tree) Dedupe() Tree {
	t.mustValid()

	table := make(map[internKey]*node)
	done := make(map[*node]*node)
	var intern func(n *node) *node
	intern = func(n *node) *node {
		if n == nil {
			return nil
		}
		if out, ok := done[n]; ok {
			return out
		}
		lhs, rhs := intern(n.lhs), intern(n.rhs)
		k := internKey{op: n.op, lhs: lhs, rhs: rhs}
		switch n.op {
		case OpConst:
			k.value = math.Float64bits(n.value)
		case OpOracle:
			k.clause = n.clause.Name()
		}
		out, ok := table[k]
		if !ok {
			out = &node{op: n.op, value: n.value, clause: n.clause, lhs: lhs, rhs: rhs}
			table[k] = out
		}
		done[n] = out
		return out
	}
	return Tree{intern(t.n)}
}

// Oracles returns the distinct clauses referenced by t, by name, in
// post-order of first appearance.
func (t Tree) Oracles() []oracle.Clause {
	var out []oracle.Clause
	seen := make(map[string]bool)
	t.Walk(func(n Tree) {
		if n.Op() != OpOracle {
			return
		}
		name := n.Clause().Name()
		if !seen[name] {
			seen[name] = true
			out = append(out, n.Clause())
		}
	})
	return out
}

// String renders t as an s-expression.
func (t Tree) String() string {
	if t.n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	write(&sb, t.n)
	return sb.String()
}

func write(sb *strings.Builder, n *node) {
	switch n.op {
	case OpConst:
		sb.WriteString(strconv.FormatFloat(n.value, 'g', -1, 64))
		return
	case OpX, OpY, OpZ:
		sb.WriteString(n.op.String())
		return
	case OpOracle:
		fmt.Fprintf(sb, "(oracle %q)", n.clause.Name())
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.op.String())
	for _, c := range []*node{n.lhs, n.rhs} {
		if c == nil {
			continue
		}
		sb.WriteByte(' ')
		write(sb, c)
	}
	sb.WriteByte(')')
}
