package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/evaluator"
	"github.com/chazu/facet/pkg/interval"
	"github.com/chazu/facet/pkg/oracle"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
)

// evalResult is the JSON form of an eval query.
type evalResult struct {
	Tree      string            `json:"tree"`
	Point     [3]float64        `json:"point"`
	Value     float64           `json:"value"`
	Ambiguous bool              `json:"ambiguous"`
	Features  [][3]float64      `json:"features"`
	Bounds    interval.Interval `json:"bounds"`
}

func newEvalCmd(a *app) *cobra.Command {
	var at []float64

	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a program at one point",
		Long: `Evaluates the program in FILE ("-" reads stdin) at a single point and
reports its value, whether the point is ambiguous, every feature direction
there, and an interval bound of the program over the configured bounds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(at) != 3 {
				return fmt.Errorf("--at needs 3 coordinates, got %d", len(at))
			}
			t, err := a.loadTree(cmd, args[0])
			if err != nil {
				return err
			}

			p := v3.Vec{X: at[0], Y: at[1], Z: at[2]}
			ev := evaluator.New(t, oracle.NewMemo())
			values, mask := ev.Sample([]v3.Vec{p})

			res := evalResult{
				Tree:      t.String(),
				Point:     [3]float64{p.X, p.Y, p.Z},
				Value:     values[0],
				Ambiguous: mask[0],
				Features:  [][3]float64{},
				Bounds:    ev.Interval(a.cfg.Region().Box()),
			}
			for _, f := range ev.Features(p) {
				d := f.Direction
				res.Features = append(res.Features, [3]float64{d.X, d.Y, d.Z})
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			dirs := make([]string, len(res.Features))
			for i, d := range res.Features {
				dirs[i] = fmt.Sprintf("(%g %g %g)", d[0], d[1], d[2])
			}
			fmt.Fprintf(out, "tree:      %s\n", res.Tree)
			fmt.Fprintf(out, "point:     (%g %g %g)\n", p.X, p.Y, p.Z)
			fmt.Fprintf(out, "value:     %g\n", res.Value)
			fmt.Fprintf(out, "ambiguous: %t\n", res.Ambiguous)
			fmt.Fprintf(out, "features:  %s\n", strings.Join(dirs, " "))
			fmt.Fprintf(out, "bounds:    %s\n", res.Bounds)
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&at, "at", []float64{0, 0, 0}, "query point as x,y,z")
	return cmd
}
