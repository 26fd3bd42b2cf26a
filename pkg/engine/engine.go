// Package engine provides the Lisp model DSL for beanmachine.
// It wraps zygomys in a sandboxed environment and compiles user source
// into a validated model graph.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/brianjo/beanmachine/internal/logging"
	"github.com/brianjo/beanmachine/pkg/graph"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a graph
// validation failure.
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

// Engine wraps the zygomys interpreter for model evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh graph factory for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates an Engine with the default evaluation timeout.
func NewEngine() *Engine {
	return &Engine{timeout: DefaultTimeout}
}

// SetTimeout replaces the evaluation time limit for subsequent
// Evaluate calls.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Evaluate compiles Lisp source into a validated model graph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval/validation failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.Graph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	ch := make(chan evalOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalOutcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source)
		ch <- evalOutcome{graph: g, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*graph.Graph, []EvalError, error) {
	f := graph.NewFactory()

	// Empty source is a valid program describing an empty model.
	if strings.TrimSpace(source) == "" {
		return finishBuild(f)
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, f)

	processed := preprocessSource(source)
	logging.Trace().Str("source", processed).Msg("preprocessed model source")

	// Load and compile the source string into bytecode.
	if err := env.LoadString(processed); err != nil {
		return nil, parseZygomysError(err), nil
	}

	// Execute the compiled bytecode; builtins populate the factory.
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return finishBuild(f)
}

// finishBuild consumes the factory. Validation failures surface as eval
// errors: they describe problems in the user's model, not engine faults.
func finishBuild(f *graph.Factory) (*graph.Graph, []EvalError, error) {
	g, err := f.Build()
	if err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return g, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
