// Package region turns a 3D bounding volume into a rectangular grid of
// sample coordinates. Regions are value objects: every operation returns a
// new Region and sample data is never mutated after construction.
package region

import (
	"fmt"

	"github.com/chazu/facet/pkg/interval"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis is an ordered run of sample coordinates spanning Bounds. Sample i
// sits at the center of the i-th of Len() equal sub-intervals.
type Axis struct {
	Bounds interval.Interval
	values []float64
}

// NewAxis samples i at the given resolution (samples per unit length).
// The count is floor(res * width), clamped to at least one sample.
func NewAxis(i interval.Interval, res float64) Axis {
	n := 0
	if c := res * i.Width(); c >= 1 {
		n = int(c)
	}
	return NewAxisCount(i, n)
}

// NewAxisCount samples i at exactly count points (minimum one).
func NewAxisCount(i interval.Interval, count int) Axis {
	if count < 1 {
		count = 1
	}
	values := make([]float64, count)
	for index := range values {
		frac := (float64(index) + 0.5) / float64(count)
		values[index] = i.Lower*(1-frac) + i.Upper*frac
	}
	return Axis{Bounds: i, values: values}
}

// Len returns the sample count.
func (a Axis) Len() int {
	return len(a.values)
}

// Value returns sample i.
func (a Axis) Value(i int) float64 {
	return a.values[i]
}

// Values returns a copy of the samples.
func (a Axis) Values() []float64 {
	return append([]float64(nil), a.values...)
}

// Step returns the width of one sample's sub-interval.
func (a Axis) Step() float64 {
	return a.Bounds.Width() / float64(len(a.values))
}

// Region is a sample grid over three axes.
type Region struct {
	X, Y, Z Axis
}

// New builds a region with the same resolution on every axis.
func New(x, y, z interval.Interval, res float64) Region {
	return NewAnisotropic(x, y, z, res, res, res)
}

// NewAnisotropic builds a region with a separate resolution per axis.
func NewAnisotropic(x, y, z interval.Interval, rx, ry, rz float64) Region {
	return Region{X: NewAxis(x, rx), Y: NewAxis(y, ry), Z: NewAxis(z, rz)}
}

// FromAxes builds a region directly from three axes.
func FromAxes(x, y, z Axis) Region {
	return Region{X: x, Y: y, Z: z}
}

// Axis returns axis 0, 1 or 2.
func (r Region) Axis(a int) Axis {
	switch a {
	case 0:
		return r.X
	case 1:
		return r.Y
	case 2:
		return r.Z
	}
	panic(fmt.Sprintf("region: invalid axis %d", a))
}

// Voxels returns the total number of samples.
func (r Region) Voxels() int {
	return r.X.Len() * r.Y.Len() * r.Z.Len()
}

// Box returns the region bounds.
func (r Region) Box() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: r.X.Bounds.Lower, Y: r.Y.Bounds.Lower, Z: r.Z.Bounds.Lower},
		Max: v3.Vec{X: r.X.Bounds.Upper, Y: r.Y.Bounds.Upper, Z: r.Z.Bounds.Upper},
	}
}

// View returns a cursor over the whole grid. No sample data is copied.
func (r Region) View() Subregion {
	return Subregion{
		axes:  [3]Axis{r.X, r.Y, r.Z},
		start: [3]int{0, 0, 0},
		size:  [3]int{r.X.Len(), r.Y.Len(), r.Z.Len()},
	}
}

// PowerOfTwo returns a region whose axes all carry n samples, where n is
// the smallest power of two >= the largest axis count. Each axis is
// widened symmetrically so that its sample spacing is preserved.
func (r Region) PowerOfTwo() Region {
	vox := max(r.X.Len(), r.Y.Len(), r.Z.Len())
	n := 1
	for n < vox {
		n <<= 1
	}

	expand := func(a Axis) Axis {
		d := a.Bounds.Width() * (float64(n)/float64(a.Len()) - 1)
		return NewAxisCount(interval.Interval{
			Lower: a.Bounds.Lower - d/2,
			Upper: a.Bounds.Upper + d/2,
		}, n)
	}
	return FromAxes(expand(r.X), expand(r.Y), expand(r.Z))
}

func (r Region) String() string {
	return fmt.Sprintf("region(%s x %s x %s, %dx%dx%d)",
		r.X.Bounds, r.Y.Bounds, r.Z.Bounds, r.X.Len(), r.Y.Len(), r.Z.Len())
}
