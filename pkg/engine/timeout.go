package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/brianjo/beanmachine/pkg/graph"
)

// DefaultTimeout is the hard limit for a single evaluation unless the
// engine is configured otherwise.
const DefaultTimeout = 5 * time.Second

// evalOutcome is the internal type used to pass evaluation results
// through channels.
type evalOutcome struct {
	graph  *graph.Graph
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout
// error once timeout elapses. It uses a generation counter to discard
// stale results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalOutcome,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*graph.Graph, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		// Check if this result is still relevant (not stale).
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			// A newer evaluation was started; discard this result.
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}

		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
