// Package script evaluates constraint scripts written in a small Lisp:
//
//	(distance 50 :unit :mm)
//	(angle 90)
//	(align :perpendicular :parts (list "bracket" "panel"))
//
// It wraps zygomys in a sandboxed environment and produces the same
// constraint set the free-text parser does, for callers that want
// deterministic structured input. Each evaluation runs in a fresh
// sandbox under a hard timeout.
package script

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/parse"
)

// EvalTimeout is the hard limit for a single script evaluation.
const EvalTimeout = 5 * time.Second

// EvalError is a non-fatal script error, such as a parse error or a
// runtime error in user code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates constraint scripts. It is safe for concurrent use;
// every call to Eval creates a fresh sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine returns a new script engine.
func NewEngine() *Engine {
	return &Engine{}
}

// evalResult passes one evaluation outcome through the timeout channel.
type evalResult struct {
	constraints []assembly.Constraint
	evalErrs    []EvalError
	err         error
}

// Eval evaluates source and returns the collected constraints.
//
// Return semantics:
//   - success: constraints + nil errors + nil error
//   - script fault: nil + eval errors + nil error
//   - fatal fault (timeout, panic): nil + nil + error
func (e *Engine) Eval(source string) ([]assembly.Constraint, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		cs, evalErrs, err := e.eval(source)
		ch <- evalResult{constraints: cs, evalErrs: evalErrs, err: err}
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.constraints, res.evalErrs, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}

// eval runs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) eval(source string) ([]assembly.Constraint, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}

	// Sandbox mode keeps user scripts away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var collector constraintCollector
	registerBuiltins(env, &collector)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseScriptError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseScriptError(err), nil
	}

	return collector.constraints, nil, nil
}

// Parse adapts the engine to the pipeline's constraint-parser contract.
// Script input is explicit, so every constraint carries its scripted
// confidence and no clarifications are produced; script faults are
// returned as errors.
func (e *Engine) Parse(ctx context.Context, source string) (*parse.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cs, evalErrs, err := e.Eval(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, 0, len(evalErrs))
		for _, ee := range evalErrs {
			msgs = append(msgs, ee.Error())
		}
		return nil, fmt.Errorf("constraint script: %s", strings.Join(msgs, "; "))
	}

	res := &parse.Result{Constraints: cs, Feasibility: 1}
	if len(cs) == 0 {
		res.Feasibility = 0
	}
	return res, nil
}

// linePattern matches zygomys error messages of the form
// "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// parseScriptError converts a zygomys error into EvalError values,
// extracting line numbers when present.
func parseScriptError(err error) []EvalError {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
