package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		tr, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if tr.Valid() {
			t.Errorf("expected zero tree for %q, got %s", src, tr)
		}
	}
}

func TestEvaluateArithmeticBecomesConstant(t *testing.T) {
	eng := NewEngine()

	tr, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if tr.Op() != tree.OpConst || tr.Value() != 3 {
		t.Errorf("expected constant 3, got %s", tr)
	}
}

func TestEvaluateNonShapeResult(t *testing.T) {
	eng := NewEngine()

	tr, evalErrs, err := eng.Evaluate(`"just a string"`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if tr.Valid() {
		t.Fatal("expected zero tree for non-shape result")
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "expected shape") {
		t.Errorf("expected shape error, got %v", evalErrs)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	tr, evalErrs, err := eng.Evaluate("(add (x) 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if tr.Valid() {
		t.Fatal("expected zero tree on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	tr, evalErrs, err := eng.Evaluate("(add (x) undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if tr.Valid() {
		t.Fatal("expected zero tree on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	var first string
	for i := 0; i < 5; i++ {
		tr, evalErrs, err := eng.Evaluate(`(fmax (oracle "CubeOracle") (sub (z) 1))`)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if i == 0 {
			first = tr.String()
		} else if tr.String() != first {
			t.Errorf("iteration %d: got %s, want %s", i, tr, first)
		}
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Concurrent calls may supersede one another; both outcomes are fine.
			_, _, err := eng.Evaluate("(add (x) (y))")
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestWithRegistry(t *testing.T) {
	eng := NewEngine(WithRegistry(oracle.NewRegistry(oracle.AxisClause(2))))

	if _, evalErrs, _ := eng.Evaluate(`(oracle "CubeOracle")`); len(evalErrs) == 0 {
		t.Fatal("expected error resolving a clause missing from the registry")
	}
	tr, evalErrs, err := eng.Evaluate(`(oracle "AxisOracle2")`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("unexpected errors: %v %v", err, evalErrs)
	}
	if tr.Op() != tree.OpOracle || tr.Clause().Name() != "AxisOracle2" {
		t.Errorf("got %s", tr)
	}
}

func TestAwaitTimesOut(t *testing.T) {
	eng := NewEngine(WithTimeout(50 * time.Millisecond))
	gen := eng.begin()
	ch := make(chan evalResult) // Never sends

	start := time.Now()
	_, _, err := eng.await(ch, gen)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "50ms") {
		t.Errorf("error %q should name the timeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	if eng := NewEngine(WithTimeout(0)); eng.timeout != EvalTimeout {
		t.Errorf("timeout = %s, want %s", eng.timeout, EvalTimeout)
	}
	if eng := NewEngine(WithTimeout(time.Second)); eng.timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", eng.timeout)
	}
}

func TestAwaitDiscardsStale(t *testing.T) {
	eng := NewEngine()
	stale := eng.begin()
	eng.begin()

	ch := make(chan evalResult, 1)
	ch <- evalResult{tree: tree.X()}

	tr, _, err := eng.await(ch, stale)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}
	if tr.Valid() {
		t.Errorf("stale result returned tree %s", tr)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad arity",
			wantLine: 3,
			wantMsg:  "bad arity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
