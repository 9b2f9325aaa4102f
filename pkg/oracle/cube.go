package oracle

import (
	"math"

	"github.com/chazu/facet/pkg/interval"
)

// CubeHalfWidth is the half-width of the cube modeled by CubeOracle.
const CubeHalfWidth = 1.5

const cubeName = "CubeOracle"

// cubeOracle is the implicit function of an axis-aligned cube centered on
// the origin: the max of six half-space distances.
type cubeOracle struct{}

var _ Oracle = (*cubeOracle)(nil)

func cubeFace(v float64) float64 {
	return math.Max(-(v + CubeHalfWidth), v-CubeHalfWidth)
}

func cubeFaceInterval(v interval.Interval) interval.Interval {
	return v.AddScalar(CubeHalfWidth).Neg().Max(v.AddScalar(-CubeHalfWidth))
}

func (cubeOracle) EvalInterval(req *Request) interval.Interval {
	eval := func() interval.Interval {
		return cubeFaceInterval(req.Interval(0)).
			Max(cubeFaceInterval(req.Interval(1))).
			Max(cubeFaceInterval(req.Interval(2)))
	}
	if memo, ok := req.Context.(*Memo); ok {
		return memo.Interval(cubeName, req.Bounds, eval)
	}
	return eval()
}

func (cubeOracle) EvalPoint(req *Request, index int) float64 {
	p := req.Points[index]
	return math.Max(math.Max(cubeFace(p.X), cubeFace(p.Y)), cubeFace(p.Z))
}

// CheckAmbiguous flags samples where two or more faces are active at once,
// which happens when the largest of |x|, |y|, |z| is shared by two axes.
// This is narrower than a pairwise equality test: at (0.5, 0, 0) |y| and
// |z| tie, but neither face is active, so the sample is not flagged.
func (cubeOracle) CheckAmbiguous(req *Request, mask []bool) {
	for i := range mask {
		p := req.Points[i]
		x, y, z := math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)
		top := math.Max(x, math.Max(y, z))
		active := 0
		for _, v := range [3]float64{x, y, z} {
			if v == top {
				active++
			}
		}
		mask[i] = mask[i] || active > 1
	}
}

// EvalFeatures emits the signed face normal of every axis whose absolute
// coordinate is the maximum. A coordinate of exactly zero emits both signs.
func (cubeOracle) EvalFeatures(req *Request, out []Feature) []Feature {
	p := req.Points[0]
	abs := [3]float64{math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)}
	top := math.Max(abs[0], math.Max(abs[1], abs[2]))

	for a := 0; a < 3; a++ {
		if abs[a] < top {
			continue
		}
		v := Coord(p, a)
		if v >= 0 {
			out = append(out, Feature{Direction: Unit(a, 1)})
		}
		if v <= 0 {
			out = append(out, Feature{Direction: Unit(a, -1)})
		}
	}
	return out
}

type cubeClause struct{}

// CubeClause returns the clause for the reference cube oracle.
func CubeClause() Clause {
	return cubeClause{}
}

func (cubeClause) NewOracle() Oracle {
	return cubeOracle{}
}

func (cubeClause) Name() string {
	return cubeName
}
