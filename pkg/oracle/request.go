package oracle

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/interval"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Request is the explicit input to every Oracle call.
type Request struct {
	// Points is the sample batch.
	Points []v3.Vec
	// Bounds is the box that EvalInterval must enclose.
	Bounds sdf.Box3
	// Context is an optional shared memo; nil means none.
	Context Context
}

// NewRequest returns a request over points whose Bounds is the points'
// extent.
func NewRequest(points []v3.Vec, ctx Context) *Request {
	return &Request{Points: points, Bounds: Extent(points), Context: ctx}
}

// NewIntervalRequest returns a request for interval evaluation of box.
func NewIntervalRequest(box sdf.Box3, ctx Context) *Request {
	return &Request{Bounds: box, Context: ctx}
}

// Interval returns the bounds along axis a as an Interval.
func (r *Request) Interval(a int) interval.Interval {
	return interval.New(Coord(r.Bounds.Min, a), Coord(r.Bounds.Max, a))
}

// Coord returns component a (0, 1 or 2) of p.
func Coord(p v3.Vec, a int) float64 {
	switch a {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	}
	panic(fmt.Sprintf("oracle: invalid axis %d", a))
}

// Unit returns the unit vector along axis a scaled by sign.
func Unit(a int, sign float64) v3.Vec {
	var v v3.Vec
	switch a {
	case 0:
		v.X = sign
	case 1:
		v.Y = sign
	case 2:
		v.Z = sign
	default:
		panic(fmt.Sprintf("oracle: invalid axis %d", a))
	}
	return v
}

// Extent returns the smallest box holding every point. An empty batch
// yields the zero box.
func Extent(points []v3.Vec) sdf.Box3 {
	if len(points) == 0 {
		return sdf.Box3{}
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}
