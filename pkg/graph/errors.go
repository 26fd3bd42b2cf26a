package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
// Every construction-time failure wraps exactly one of these.
var (
	// ErrUnknownParent indicates a parent reference to a node that does
	// not exist in the factory at the time of the call.
	ErrUnknownParent = errors.New("unknown parent")

	// ErrMalformedSequence indicates sequence numbers that are not the
	// contiguous range 0..n-1 in order.
	ErrMalformedSequence = errors.New("malformed sequence")

	// ErrForwardReference indicates a parent reference that does not
	// point strictly backward. Backward-only references are the
	// acyclicity proof, so this subsumes cycle detection.
	ErrForwardReference = errors.New("cyclic or forward reference")

	// ErrUnknownOperator indicates an operator value with no catalog row.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrMalformedNode indicates a node whose payload or declared type
	// disagrees with its operator.
	ErrMalformedNode = errors.New("malformed node")

	// ErrArityMismatch indicates a parent count the operator does not accept.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrTypeMismatch indicates a parent whose result type disagrees with
	// what the operator requires at that position.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDuplicateQueryIndex indicates two queries sharing an index.
	ErrDuplicateQueryIndex = errors.New("duplicate query index")

	// ErrQueryIndexGap indicates query indices that do not form a dense
	// zero-based range.
	ErrQueryIndexGap = errors.New("query index gap")
)

// ValidationError describes the first rule violation found while
// validating a node list. It carries the offending node's sequence
// number and operator so callers can produce an actionable diagnostic.
// Wraps the violated sentinel for errors.Is() compatibility.
type ValidationError struct {
	Seq     NodeID   // offending node's sequence number
	Op      Operator // offending node's operator
	Message string   // deterministic description of the violation
	rule    error    // the violated sentinel
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("node %d (%s): %s: %s", int(e.Seq), e.Op, e.rule.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error { return e.rule }

// violation builds the ValidationError for node n breaking rule.
func violation(n *Node, rule error, format string, args ...any) error {
	return &ValidationError{
		Seq:     n.Seq,
		Op:      n.Op,
		Message: fmt.Sprintf(format, args...),
		rule:    rule,
	}
}
