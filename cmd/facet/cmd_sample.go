package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// sampleResult is the JSON form of a sample run.
type sampleResult struct {
	Region  string             `json:"region"`
	Size    [3]int             `json:"size"`
	Voxels  int                `json:"voxels"`
	Inside  int                `json:"inside"`
	Stats   tessellate.Stats   `json:"stats"`
	Elapsed string             `json:"elapsed"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func newSampleCmd(a *app) *cobra.Command {
	var metrics bool

	cmd := &cobra.Command{
		Use:   "sample FILE",
		Short: "Sample a program over the configured grid",
		Long: `Samples the program in FILE over the configured bounds and resolution,
pruning cells whose interval bound has one sign, and prints grid
statistics. --metrics also dumps the sampler's prometheus counters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTree(cmd, args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			opts := tessellate.Options{
				Workers:       a.cfg.Workers,
				MinCellVoxels: a.cfg.MinCellVoxels,
				PowerOfTwo:    a.cfg.PowerOfTwo,
				Logger:        a.log,
				Context:       oracle.NewMemo(),
			}
			if metrics {
				opts.Metrics = tessellate.NewMetrics(reg)
			}

			start := time.Now()
			grid, err := tessellate.Sample(cmd.Context(), t, a.cfg.Region(), opts)
			if err != nil {
				return err
			}

			nx, ny, nz := grid.Size()
			res := sampleResult{
				Region:  grid.Region.String(),
				Size:    [3]int{nx, ny, nz},
				Voxels:  len(grid.Values),
				Inside:  grid.Inside(),
				Stats:   grid.Stats,
				Elapsed: time.Since(start).String(),
			}
			if metrics {
				if res.Metrics, err = gather(reg); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "region:    %s\n", res.Region)
			fmt.Fprintf(out, "voxels:    %d (%d inside)\n", res.Voxels, res.Inside)
			fmt.Fprintf(out, "pruned:    %d cells, %d voxels\n", res.Stats.PrunedCells, res.Stats.PrunedVoxels)
			fmt.Fprintf(out, "evaluated: %d cells, %d points\n", res.Stats.EvaluatedCells, res.Stats.Points)
			fmt.Fprintf(out, "ambiguous: %d\n", res.Stats.Ambiguous)
			fmt.Fprintf(out, "elapsed:   %s\n", res.Elapsed)
			names := make([]string, 0, len(res.Metrics))
			for name := range res.Metrics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s %g\n", name, res.Metrics[name])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "record sampler metrics")
	return cmd
}

// gather flattens reg into "name{label=value,...}" keys. Counters report
// their value and histograms their sample count.
func gather(reg *prometheus.Registry) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				pairs := make([]string, len(labels))
				for i, l := range labels {
					pairs[i] = l.GetName() + "=" + l.GetValue()
				}
				key += "{" + strings.Join(pairs, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}
