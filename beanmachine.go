// Package beanmachine bundles the model DSL engine and the graph validator
// behind a single compile call. The CLI and the examples consume this
// package; programs that assemble graphs programmatically can use pkg/graph
// directly.
package beanmachine

import (
	"os"
	"time"

	"github.com/brianjo/beanmachine/internal/logging"
	"github.com/brianjo/beanmachine/pkg/engine"
	"github.com/brianjo/beanmachine/pkg/graph"
)

// Diagnostic is a JSON-serializable compile diagnostic. Line and Col are
// 1-based when known and 0 when the failure has no source position (fatal
// engine errors, validation failures).
type Diagnostic struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is the outcome of compiling one model source. Exactly one of
// Graph and Diagnostics is populated: a nil Graph means Diagnostics
// explains why, except for empty sources, which compile to an empty graph.
type Result struct {
	Graph       *graph.Graph
	Diagnostics []Diagnostic
}

// Compiler turns model source text into validated graphs. It reuses one
// engine across calls, so sequential compiles share the engine's timeout
// and generation bookkeeping.
type Compiler struct {
	engine *engine.Engine
}

// NewCompiler creates a Compiler with a fresh engine.
func NewCompiler() *Compiler {
	return &Compiler{engine: engine.NewEngine()}
}

// SetTimeout adjusts how long a single compile may run before it is
// abandoned with a fatal diagnostic.
func (c *Compiler) SetTimeout(d time.Duration) {
	c.engine.SetTimeout(d)
}

// Compile evaluates model source and returns the validated graph plus any
// diagnostics. All failures land in Result.Diagnostics, whether they are
// parse errors, builtin misuse, validation violations, or engine faults,
// so callers have one error channel to render.
func (c *Compiler) Compile(source string) Result {
	result := Result{Diagnostics: []Diagnostic{}}

	g, evalErrs, err := c.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded generation).
		logging.Error().Err(err).Msg("model evaluation failed")
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Message: err.Error(),
		})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.Graph = g
	return result
}

// CompileFile reads a model file and compiles it. The error covers file
// access only; compile problems are reported through Result.Diagnostics.
func (c *Compiler) CompileFile(path string) (Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return c.Compile(string(source)), nil
}
