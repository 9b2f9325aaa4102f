package region

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Subregion is a non-owning window onto a Region's grid. It shares the
// parent's sample slices and addresses them by index range, so splitting
// and iterating never copy sample data.
type Subregion struct {
	axes  [3]Axis
	start [3]int
	size  [3]int
}

// Size returns the sample count along each axis.
func (s Subregion) Size() (nx, ny, nz int) {
	return s.size[0], s.size[1], s.size[2]
}

// Offset returns the index of the first sample along each axis in the
// parent region.
func (s Subregion) Offset() (x, y, z int) {
	return s.start[0], s.start[1], s.start[2]
}

// Voxels returns the number of samples in the window.
func (s Subregion) Voxels() int {
	return s.size[0] * s.size[1] * s.size[2]
}

// Box returns the bounds of the cells covered by the window. Each sample
// owns one sub-interval of its axis, so the box encloses every sample.
func (s Subregion) Box() sdf.Box3 {
	var lo, hi [3]float64
	for a := 0; a < 3; a++ {
		step := s.axes[a].Step()
		lo[a] = s.axes[a].Bounds.Lower + float64(s.start[a])*step
		hi[a] = lo[a] + float64(s.size[a])*step
	}
	return sdf.Box3{
		Min: v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]},
		Max: v3.Vec{X: hi[0], Y: hi[1], Z: hi[2]},
	}
}

// CanSplit reports whether any axis holds more than one sample.
func (s Subregion) CanSplit() bool {
	return s.size[0] > 1 || s.size[1] > 1 || s.size[2] > 1
}

// Split halves the window along its longest axis (by sample count). The
// first half takes the lower indices. Split panics if !CanSplit().
func (s Subregion) Split() (Subregion, Subregion) {
	a := 0
	for i := 1; i < 3; i++ {
		if s.size[i] > s.size[a] {
			a = i
		}
	}
	if s.size[a] < 2 {
		panic("region: cannot split a single-sample subregion")
	}

	lo, hi := s, s
	half := s.size[a] / 2
	lo.size[a] = half
	hi.start[a] = s.start[a] + half
	hi.size[a] = s.size[a] - half
	return lo, hi
}

// Point returns the sample at local indices (i, j, k).
func (s Subregion) Point(i, j, k int) v3.Vec {
	return v3.Vec{
		X: s.axes[0].Value(s.start[0] + i),
		Y: s.axes[1].Value(s.start[1] + j),
		Z: s.axes[2].Value(s.start[2] + k),
	}
}

// Each calls fn for every sample with its global (parent) indices, X
// varying fastest.
func (s Subregion) Each(fn func(i, j, k int, p v3.Vec)) {
	for k := 0; k < s.size[2]; k++ {
		for j := 0; j < s.size[1]; j++ {
			for i := 0; i < s.size[0]; i++ {
				fn(s.start[0]+i, s.start[1]+j, s.start[2]+k, s.Point(i, j, k))
			}
		}
	}
}

// Points appends every sample to buf in Each order and returns it.
func (s Subregion) Points(buf []v3.Vec) []v3.Vec {
	s.Each(func(_, _, _ int, p v3.Vec) {
		buf = append(buf, p)
	})
	return buf
}
