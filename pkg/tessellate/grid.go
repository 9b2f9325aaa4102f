package tessellate

import "github.com/chazu/facet/pkg/region"

// Grid holds sampled values for every sample of a region. Entries are
// stored with X varying fastest.
type Grid struct {
	Region    region.Region
	Values    []float64
	Ambiguous []bool
	Stats     Stats
}

// Stats counts the work done by one Sample call.
type Stats struct {
	PrunedCells    int `json:"prunedCells"`
	PrunedVoxels   int `json:"prunedVoxels"`
	EvaluatedCells int `json:"evaluatedCells"`
	Points         int `json:"points"`
	Ambiguous      int `json:"ambiguous"`
}

func (s *Stats) add(o Stats) {
	s.PrunedCells += o.PrunedCells
	s.PrunedVoxels += o.PrunedVoxels
	s.EvaluatedCells += o.EvaluatedCells
	s.Points += o.Points
	s.Ambiguous += o.Ambiguous
}

func newGrid(r region.Region) *Grid {
	n := r.Voxels()
	return &Grid{
		Region:    r,
		Values:    make([]float64, n),
		Ambiguous: make([]bool, n),
	}
}

// Size returns the sample count along each axis.
func (g *Grid) Size() (nx, ny, nz int) {
	return g.Region.X.Len(), g.Region.Y.Len(), g.Region.Z.Len()
}

// Index returns the flat index of sample (i, j, k).
func (g *Grid) Index(i, j, k int) int {
	nx, ny, _ := g.Size()
	return i + nx*(j+ny*k)
}

// At returns the value stored for sample (i, j, k).
func (g *Grid) At(i, j, k int) float64 {
	return g.Values[g.Index(i, j, k)]
}

// Inside returns the number of samples with a negative value.
func (g *Grid) Inside() int {
	n := 0
	for _, v := range g.Values {
		if v < 0 {
			n++
		}
	}
	return n
}
