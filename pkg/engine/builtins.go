package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpTree wraps a tree.Tree so it can be passed between builtins.
type sexpTree struct {
	t tree.Tree
}

func (s *sexpTree) SexpString(ps *zygo.PrintState) string {
	return s.t.String()
}
func (s *sexpTree) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toTree extracts a shape from a Sexp. Numbers become constant leaves.
func toTree(s zygo.Sexp) (tree.Tree, error) {
	switch v := s.(type) {
	case *sexpTree:
		return v.t, nil
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, _ := toFloat64(v)
		return tree.Const(f), nil
	case nil:
		return tree.Tree{}, fmt.Errorf("expected shape or number, got nothing")
	}
	return tree.Tree{}, fmt.Errorf("expected shape or number, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// treeArgs converts every argument to a tree, reporting the failing
// position.
func treeArgs(fn string, args []zygo.Sexp) ([]tree.Tree, error) {
	out := make([]tree.Tree, len(args))
	for i, a := range args {
		t, err := toTree(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type zygoFn = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

func wrap(t tree.Tree) zygo.Sexp {
	return &sexpTree{t: t}
}

// leaf returns a zero-argument builtin producing a fresh leaf.
func leaf(mk func() tree.Tree) zygoFn {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("%s takes no arguments, got %d", name, len(args))
		}
		return wrap(mk()), nil
	}
}

// unary returns a one-argument builtin.
func unary(op func(tree.Tree) tree.Tree) zygoFn {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", name, len(args))
		}
		ts, err := treeArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wrap(op(ts[0])), nil
	}
}

// fold returns a variadic builtin that left-folds op over its arguments.
func fold(op func(a, b tree.Tree) tree.Tree) zygoFn {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 1 argument", name)
		}
		ts, err := treeArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		acc := ts[0]
		for _, t := range ts[1:] {
			acc = op(acc, t)
		}
		return wrap(acc), nil
	}
}

// registerBuiltins installs the shape DSL builtins into a zygomys
// environment. Oracle names are resolved against reg.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, reg *oracle.Registry) {

	// (x) (y) (z)
	env.AddFunction("x", leaf(tree.X))
	env.AddFunction("y", leaf(tree.Y))
	env.AddFunction("z", leaf(tree.Z))

	// (neg a) (fabs a) (square a) (sqrt a)
	env.AddFunction("neg", unary(tree.Neg))
	env.AddFunction("fabs", unary(tree.Abs))
	env.AddFunction("square", unary(tree.Square))
	env.AddFunction("sqrt", unary(tree.Sqrt))

	// (add a b ...) (mul a b ...) (fmax a b ...) (fmin a b ...)
	env.AddFunction("add", fold(tree.Add))
	env.AddFunction("mul", fold(tree.Mul))
	env.AddFunction("fmax", fold(tree.Max))
	env.AddFunction("fmin", fold(tree.Min))

	// -----------------------------------------------------------------------
	// (sub a) is negation; (sub a b c) is ((a - b) - c)
	// -----------------------------------------------------------------------
	subFold := fold(tree.Sub)
	env.AddFunction("sub", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 1 {
			return unary(tree.Neg)(env, name, args)
		}
		return subFold(env, name, args)
	})

	// -----------------------------------------------------------------------
	// (constant 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("constant", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("constant requires exactly 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constant: %w", err)
		}
		return wrap(tree.Const(f)), nil
	})

	// -----------------------------------------------------------------------
	// (oracle "CubeOracle")
	// -----------------------------------------------------------------------
	env.AddFunction("oracle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("oracle requires a clause name")
		}
		clauseName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("oracle: name: %w", err)
		}
		c, ok := reg.Lookup(clauseName)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("oracle: no clause named %q (have %s)",
				clauseName, strings.Join(reg.Names(), ", "))
		}
		return wrap(tree.FromOracle(c)), nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var c [3]float64
		for i, label := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", label, err)
			}
			c[i] = f
		}

		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 2 :center (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		radius := 1.0
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %g", f)
			}
			radius = f
		}

		s := tree.Sub(
			tree.Sqrt(tree.Add(tree.Add(tree.Square(tree.X()), tree.Square(tree.Y())), tree.Square(tree.Z()))),
			tree.Const(radius))

		if v, ok := pa.kw["center"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: center: %w", err)
			}
			s = translate(s, c)
		}
		return wrap(s), nil
	})

	// -----------------------------------------------------------------------
	// (move shape :by (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("move requires a shape as first argument")
		}
		s, err := toTree(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: shape: %w", err)
		}
		v, ok := pa.kw["by"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("move requires :by")
		}
		offset, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: by: %w", err)
		}
		return wrap(translate(s, offset)), nil
	})

	// -----------------------------------------------------------------------
	// (remap shape xexpr yexpr zexpr)
	// -----------------------------------------------------------------------
	env.AddFunction("remap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("remap requires a shape and three axis expressions, got %d arguments", len(args))
		}
		ts, err := treeArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		// Oracle leaves read the sample points directly, so only a
		// translation (move) can reach them.
		if cs := ts[0].Oracles(); len(cs) > 0 {
			return zygo.SexpNull, fmt.Errorf("remap: shape contains oracle %q; use move to translate oracle shapes", cs[0].Name())
		}
		return wrap(ts[0].Remap(ts[1], ts[2], ts[3])), nil
	})
}

// translate moves s by offset: coordinate leaves become p - offset and
// oracle leaves are wrapped so their sample points shift the same way.
func translate(s tree.Tree, offset v3.Vec) tree.Tree {
	moved := s.Remap(
		tree.Sub(tree.X(), tree.Const(offset.X)),
		tree.Sub(tree.Y(), tree.Const(offset.Y)),
		tree.Sub(tree.Z(), tree.Const(offset.Z)),
	)
	return moved.MapOracles(func(c oracle.Clause) oracle.Clause {
		return oracle.Translate(c, offset)
	})
}
