// Package interval implements closed-interval arithmetic used to bound
// implicit functions over axis-aligned boxes. Every operation returns a
// sound enclosure: the result is never narrower than the true range of the
// operation applied to all values drawn from the operands.
package interval

import (
	"fmt"
	"math"
)

// Interval is the closed range [Lower, Upper]. Construct with New to keep
// Lower <= Upper.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// New returns the interval spanning a and b in either order.
func New(a, b float64) Interval {
	if a > b {
		a, b = b, a
	}
	return Interval{Lower: a, Upper: b}
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval {
	return Interval{Lower: v, Upper: v}
}

// Width returns Upper - Lower.
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// Mid returns the midpoint.
func (i Interval) Mid() float64 {
	return (i.Lower + i.Upper) / 2
}

// Contains reports whether v lies in the closed range.
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// Add returns [a+c, b+d].
func (i Interval) Add(o Interval) Interval {
	return Interval{Lower: i.Lower + o.Lower, Upper: i.Upper + o.Upper}
}

// AddScalar shifts both bounds by v.
func (i Interval) AddScalar(v float64) Interval {
	return Interval{Lower: i.Lower + v, Upper: i.Upper + v}
}

// Neg returns [-b, -a].
func (i Interval) Neg() Interval {
	return Interval{Lower: -i.Upper, Upper: -i.Lower}
}

// Sub returns [a-d, b-c].
func (i Interval) Sub(o Interval) Interval {
	return i.Add(o.Neg())
}

// Mul returns the hull of the four bound products.
func (i Interval) Mul(o Interval) Interval {
	a := i.Lower * o.Lower
	b := i.Lower * o.Upper
	c := i.Upper * o.Lower
	d := i.Upper * o.Upper
	return Interval{
		Lower: math.Min(math.Min(a, b), math.Min(c, d)),
		Upper: math.Max(math.Max(a, b), math.Max(c, d)),
	}
}

// Max returns [max(a,c), max(b,d)].
func (i Interval) Max(o Interval) Interval {
	return Interval{Lower: math.Max(i.Lower, o.Lower), Upper: math.Max(i.Upper, o.Upper)}
}

// Min returns [min(a,c), min(b,d)].
func (i Interval) Min(o Interval) Interval {
	return Interval{Lower: math.Min(i.Lower, o.Lower), Upper: math.Min(i.Upper, o.Upper)}
}

// Abs returns the range of |v| for v in i.
func (i Interval) Abs() Interval {
	switch {
	case i.Lower >= 0:
		return i
	case i.Upper <= 0:
		return i.Neg()
	}
	return Interval{Lower: 0, Upper: math.Max(-i.Lower, i.Upper)}
}

// Square returns the range of v*v for v in i.
func (i Interval) Square() Interval {
	a := i.Abs()
	return Interval{Lower: a.Lower * a.Lower, Upper: a.Upper * a.Upper}
}

// Sqrt returns the range of sqrt(v) for the non-negative part of i.
// Negative inputs are clamped to zero.
func (i Interval) Sqrt() Interval {
	return Interval{
		Lower: math.Sqrt(math.Max(i.Lower, 0)),
		Upper: math.Sqrt(math.Max(i.Upper, 0)),
	}
}

// Hull returns the smallest interval containing both i and o.
func (i Interval) Hull(o Interval) Interval {
	return Interval{Lower: math.Min(i.Lower, o.Lower), Upper: math.Max(i.Upper, o.Upper)}
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lower, i.Upper)
}
