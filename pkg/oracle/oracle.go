// Package oracle defines the contract that lets externally supplied
// evaluators act as leaves of an implicit-function tree.
//
// A Clause is an immutable, named factory embedded in the tree. For every
// evaluation batch the evaluator asks the clause for a fresh Oracle and then
// drives it through four stages:
//
//   - EvalInterval bounds the oracle's value over a box, for cell pruning.
//   - EvalPoint computes the exact value at one sample.
//   - CheckAmbiguous flags samples where the local behavior is not unique.
//   - EvalFeatures lists every valid outward direction at one sample.
//
// Each call receives an explicit Request carrying the sample batch, the
// batch bounds and an optional Context. Oracle instances may keep scratch
// state between calls and must not be shared by concurrently evaluated
// batches.
package oracle

import (
	"github.com/chazu/facet/pkg/interval"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Feature is one outward direction valid at a specific sample.
type Feature struct {
	Direction v3.Vec `json:"direction"`
}

// Oracle evaluates a custom leaf over one batch of samples.
type Oracle interface {
	// EvalInterval returns an enclosure of the oracle's value over
	// req.Bounds. It must never be narrower than the true range.
	EvalInterval(req *Request) interval.Interval

	// EvalPoint returns the exact value at req.Points[index].
	EvalPoint(req *Request, index int) float64

	// CheckAmbiguous sets mask[i] for each ambiguous sample i in the
	// prefix req.Points[:len(mask)]. It only ever sets bits; bits set by
	// other nodes in the same pass are left alone.
	CheckAmbiguous(req *Request, mask []bool)

	// EvalFeatures appends every valid direction at req.Points[0] to out
	// and returns the extended slice. Existing entries are preserved.
	EvalFeatures(req *Request, out []Feature) []Feature
}

// Clause manufactures Oracle instances and identifies them by name.
type Clause interface {
	// NewOracle returns a new, independent Oracle.
	NewOracle() Oracle

	// Name is a stable identifier used for structural identity.
	Name() string
}
