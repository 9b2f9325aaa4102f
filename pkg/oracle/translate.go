package oracle

import (
	"fmt"

	"github.com/chazu/facet/pkg/interval"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type translatedClause struct {
	inner Clause
	by    v3.Vec
}

// Translate returns a clause whose oracles evaluate c moved by the offset
// by: the value at p is c's value at p - by. Nested translations collapse
// into one, and a zero offset returns c itself.
//
// The name encodes the offset, e.g. CubeOracle@(0,0,10), so moved and
// unmoved leaves never dedupe into one node.
func Translate(c Clause, by v3.Vec) Clause {
	if t, ok := c.(translatedClause); ok {
		c, by = t.inner, t.by.Add(by)
	}
	if by == (v3.Vec{}) {
		return c
	}
	// Adding zero turns -0 into 0 so equal offsets print the same name.
	by = v3.Vec{X: by.X + 0, Y: by.Y + 0, Z: by.Z + 0}
	return translatedClause{inner: c, by: by}
}

func (c translatedClause) NewOracle() Oracle {
	return &translatedOracle{inner: c.inner.NewOracle(), by: c.by}
}

func (c translatedClause) Name() string {
	return fmt.Sprintf("%s@(%g,%g,%g)", c.inner.Name(), c.by.X, c.by.Y, c.by.Z)
}

// translatedOracle shifts each request into the inner oracle's frame.
// Features are directions, so they pass through unchanged. The shifted
// copy is reused for as long as the same Request is passed in.
type translatedOracle struct {
	inner  Oracle
	by     v3.Vec
	points []v3.Vec

	src, dst *Request
}

var _ Oracle = (*translatedOracle)(nil)

func (o *translatedOracle) shift(req *Request) *Request {
	if req == o.src && len(o.dst.Points) == len(req.Points) {
		return o.dst
	}
	o.points = o.points[:0]
	for _, p := range req.Points {
		o.points = append(o.points, p.Sub(o.by))
	}
	o.src = req
	o.dst = &Request{
		Points:  o.points,
		Bounds:  req.Bounds.Translate(o.by.Neg()),
		Context: req.Context,
	}
	return o.dst
}

func (o *translatedOracle) EvalInterval(req *Request) interval.Interval {
	return o.inner.EvalInterval(o.shift(req))
}

func (o *translatedOracle) EvalPoint(req *Request, index int) float64 {
	return o.inner.EvalPoint(o.shift(req), index)
}

func (o *translatedOracle) CheckAmbiguous(req *Request, mask []bool) {
	o.inner.CheckAmbiguous(o.shift(req), mask)
}

func (o *translatedOracle) EvalFeatures(req *Request, out []Feature) []Feature {
	return o.inner.EvalFeatures(o.shift(req), out)
}
