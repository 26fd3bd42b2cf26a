package graph

import "fmt"

// Operator enumerates the operations a node can perform.
type Operator int

const (
	Constant  Operator = iota // scalar literal
	Add                       // sum of two reals
	Multiply                  // product of two reals
	Normal                    // normal distribution from mean and stddev
	Beta                      // beta distribution from alpha and beta
	Bernoulli                 // bernoulli distribution from success probability
	Sample                    // draw from a distribution
	Observe                   // bind an observed value to a distribution
	Query                     // mark a value for extraction after inference

	// lastOperator bounds the enum for iteration. It is never
	// attached to a node.
	lastOperator
)

func (op Operator) String() string {
	if spec, ok := Spec(op); ok {
		return spec.Name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Type enumerates the result types a node can carry.
type Type int

const (
	None         Type = iota // no runtime value (observe, query)
	Real                     // scalar real value
	Distribution             // distribution over reals
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Real:
		return "real"
	case Distribution:
		return "distribution"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}
