package tree

// Op enumerates the kinds of tree nodes.
type Op int

const (
	OpConst  Op = iota // numeric constant
	OpX                // X coordinate
	OpY                // Y coordinate
	OpZ                // Z coordinate
	OpOracle           // custom leaf backed by an oracle.Clause
	OpNeg
	OpAbs
	OpSquare
	OpSqrt
	OpAdd
	OpSub
	OpMul
	OpMin
	OpMax
)

func (o Op) String() string {
	switch o {
	case OpConst:
		return "const"
	case OpX:
		return "x"
	case OpY:
		return "y"
	case OpZ:
		return "z"
	case OpOracle:
		return "oracle"
	case OpNeg:
		return "neg"
	case OpAbs:
		return "abs"
	case OpSquare:
		return "square"
	case OpSqrt:
		return "sqrt"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	default:
		return "unknown"
	}
}

// Arity returns the number of children a node of this kind has.
func (o Op) Arity() int {
	switch o {
	case OpNeg, OpAbs, OpSquare, OpSqrt:
		return 1
	case OpAdd, OpSub, OpMul, OpMin, OpMax:
		return 2
	default:
		return 0
	}
}

// IsAxis reports whether o is one of the coordinate leaves.
func (o Op) IsAxis() bool {
	return o == OpX || o == OpY || o == OpZ
}
