// Package engine provides the Lisp evaluation engine for facet.
// It wraps zygomys in a sandboxed environment and produces an implicit
// function tree from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for shape evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	registry *oracle.Registry
	timeout  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the registry used to resolve (oracle "name") forms.
func WithRegistry(r *oracle.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance. Without options it resolves
// oracles from oracle.DefaultRegistry and times out after EvalTimeout.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = oracle.DefaultRegistry()
	}
	return e
}

// Registry returns the registry used for oracle lookups.
func (e *Engine) Registry() *oracle.Registry {
	return e.registry
}

// Evaluate takes Lisp source code and produces a shape tree.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns tree + nil errors + nil error
//   - Empty source: returns the zero Tree + nil errors + nil error
//   - On parse/eval failure: returns zero Tree + eval errors + nil error
//   - On fatal failure: returns zero Tree + nil + error, which wraps
//     ErrTimeout or ErrSuperseded when those are the cause
func (e *Engine) Evaluate(source string) (tree.Tree, []EvalError, error) {
	gen := e.begin()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		t, evalErrs, err := e.evaluate(source)
		ch <- evalResult{tree: t, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (tree.Tree, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return tree.Tree{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, e.registry)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return tree.Tree{}, parseZygomysError(err), nil
	}

	result, err := env.Run()
	if err != nil {
		return tree.Tree{}, parseZygomysError(err), nil
	}

	t, err := toTree(result)
	if err != nil {
		return tree.Tree{}, []EvalError{{Message: "program result: " + err.Error()}}, nil
	}
	return t.Dedupe(), nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
