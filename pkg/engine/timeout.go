package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/facet/pkg/tree"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a program runs longer than the engine's
	// timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer Evaluate call started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	tree   tree.Tree
	errors []EvalError
	err    error
}

// await returns the result sent on ch for generation gen. A timed-out
// evaluation keeps running in its goroutine; ch is buffered so its late
// send never blocks.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (tree.Tree, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return tree.Tree{}, nil, ErrSuperseded
		}
		return res.tree, res.errors, res.err
	case <-timer.C:
		return tree.Tree{}, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

// begin starts a new generation and returns it.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
