// Package tessellate samples an expression tree over a region grid. The
// grid is partitioned into cells which are sampled concurrently; a cell
// whose interval bound has a single sign is filled without evaluating
// its points.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/evaluator"
	"github.com/chazu/facet/pkg/interval"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/region"
	"github.com/chazu/facet/pkg/tree"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultMinCellVoxels is the cell size below which a cell is evaluated
// point by point instead of being split further.
const DefaultMinCellVoxels = 64

// taskCells is the number of cells the grid is partitioned into before
// sampling. It does not depend on Workers, so neither do the results.
const taskCells = 64

// Options controls a Sample call. The zero value is usable.
type Options struct {
	// Workers bounds the number of concurrent cells. Zero means GOMAXPROCS.
	Workers int

	// MinCellVoxels is the largest cell evaluated directly.
	MinCellVoxels int

	// PowerOfTwo resamples the region so every axis has the same
	// power-of-two sample count before sampling.
	PowerOfTwo bool

	// Logger receives a summary record per call. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics, if set, is updated once per call.
	Metrics *Metrics

	// Context is shared by every oracle call. Nil means a fresh oracle.Memo.
	Context oracle.Context
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MinCellVoxels <= 0 {
		o.MinCellVoxels = DefaultMinCellVoxels
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Context == nil {
		o.Context = oracle.NewMemo()
	}
	return o
}

// Sample evaluates t at every sample of r.
//
// Each goroutine builds its own evaluator, so oracle instances are never
// shared between goroutines. Cancelling ctx stops the remaining cells and
// returns ctx's error.
func Sample(ctx context.Context, t tree.Tree, r region.Region, opts Options) (*Grid, error) {
	if !t.Valid() {
		return nil, errors.New("tessellate: empty tree")
	}
	opts = opts.withDefaults()
	if opts.PowerOfTwo {
		r = r.PowerOfTwo()
	}

	start := time.Now()
	grid := newGrid(r)
	cells := partition(r.View(), taskCells)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, cell := range cells {
		g.Go(func() error {
			w := &worker{
				ev:      evaluator.New(t, opts.Context),
				grid:    grid,
				minCell: opts.MinCellVoxels,
			}
			if err := w.walk(gctx, cell); err != nil {
				return err
			}
			mu.Lock()
			grid.Stats.add(w.stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	elapsed := time.Since(start)
	opts.Metrics.observe(grid.Stats, elapsed)
	opts.Logger.Debug("sampled region",
		slog.String("region", r.String()),
		slog.Int("cells", len(cells)),
		slog.Int("pruned", grid.Stats.PrunedCells),
		slog.Int("evaluated", grid.Stats.EvaluatedCells),
		slog.Int("points", grid.Stats.Points),
		slog.Int("ambiguous", grid.Stats.Ambiguous),
		slog.Duration("elapsed", elapsed),
	)
	return grid, nil
}

// partition splits s breadth-first until there are at least n cells or
// nothing is left to split.
func partition(s region.Subregion, n int) []region.Subregion {
	cells := []region.Subregion{s}
	for len(cells) < n {
		next := make([]region.Subregion, 0, 2*len(cells))
		split := false
		for _, c := range cells {
			if c.CanSplit() {
				lo, hi := c.Split()
				next = append(next, lo, hi)
				split = true
			} else {
				next = append(next, c)
			}
		}
		cells = next
		if !split {
			break
		}
	}
	return cells
}

type worker struct {
	ev      *evaluator.Evaluator
	grid    *Grid
	minCell int
	stats   Stats
	buf     []v3.Vec
}

// walk prunes s by its interval bound, splitting it until it is small
// enough to evaluate directly. Distinct cells write disjoint grid
// entries, so no locking is needed.
func (w *worker) walk(ctx context.Context, s region.Subregion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	iv := w.ev.Interval(s.Box())
	if iv.Upper < 0 || iv.Lower > 0 {
		w.fill(s, iv)
		return nil
	}

	if s.Voxels() > w.minCell && s.CanSplit() {
		lo, hi := s.Split()
		if err := w.walk(ctx, lo); err != nil {
			return err
		}
		return w.walk(ctx, hi)
	}

	w.buf = s.Points(w.buf[:0])
	values, mask := w.ev.Sample(w.buf)
	n := 0
	s.Each(func(i, j, k int, _ v3.Vec) {
		idx := w.grid.Index(i, j, k)
		w.grid.Values[idx] = values[n]
		w.grid.Ambiguous[idx] = mask[n]
		if mask[n] {
			w.stats.Ambiguous++
		}
		n++
	})
	w.stats.EvaluatedCells++
	w.stats.Points += n
	return nil
}

// fill stores the bound nearest zero for every sample of a single-signed
// cell. The stored value has the correct sign and never overstates the
// distance to the surface.
func (w *worker) fill(s region.Subregion, iv interval.Interval) {
	v := iv.Lower
	if iv.Upper < 0 {
		v = iv.Upper
	}
	s.Each(func(i, j, k int, _ v3.Vec) {
		w.grid.Values[w.grid.Index(i, j, k)] = v
	})
	w.stats.PrunedCells++
	w.stats.PrunedVoxels += s.Voxels()
}
