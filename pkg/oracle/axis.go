package oracle

import (
	"fmt"

	"github.com/chazu/facet/pkg/interval"
)

// axisOracle passes one coordinate through unchanged. Routing a tree's
// coordinates through it must reproduce native evaluation exactly.
type axisOracle struct {
	axis int
}

var _ Oracle = (*axisOracle)(nil)

func (o *axisOracle) EvalInterval(req *Request) interval.Interval {
	return req.Interval(o.axis)
}

func (o *axisOracle) EvalPoint(req *Request, index int) float64 {
	return Coord(req.Points[index], o.axis)
}

func (o *axisOracle) CheckAmbiguous(*Request, []bool) {
	// A coordinate is smooth everywhere.
}

func (o *axisOracle) EvalFeatures(_ *Request, out []Feature) []Feature {
	return append(out, Feature{Direction: Unit(o.axis, 1)})
}

type axisClause struct {
	axis int
}

// AxisClause returns the clause for the passthrough oracle of axis a
// (0 = X, 1 = Y, 2 = Z). It panics on any other axis.
func AxisClause(a int) Clause {
	if a < 0 || a > 2 {
		panic(fmt.Sprintf("oracle: invalid axis %d", a))
	}
	return axisClause{axis: a}
}

func (c axisClause) NewOracle() Oracle {
	return &axisOracle{axis: c.axis}
}

func (c axisClause) Name() string {
	return fmt.Sprintf("AxisOracle%d", c.axis)
}
