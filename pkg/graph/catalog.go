package graph

// OpSpec describes the shape the validator demands of one operator:
// its display name, the result type of a node carrying it, and the
// required result type of each parent position. Every operator takes
// an exact number of parents, so arity is len(Params).
type OpSpec struct {
	Name   string
	Params []Type
	Result Type
}

// catalog is the single source of truth for operator semantics.
// Adding an operator means adding a row here (and, if the operator
// needs checks beyond arity and parent types, extending the validator).
var catalog = [lastOperator]OpSpec{
	Constant:  {Name: "constant", Params: nil, Result: Real},
	Add:       {Name: "add", Params: []Type{Real, Real}, Result: Real},
	Multiply:  {Name: "multiply", Params: []Type{Real, Real}, Result: Real},
	Normal:    {Name: "normal", Params: []Type{Real, Real}, Result: Distribution},
	Beta:      {Name: "beta", Params: []Type{Real, Real}, Result: Distribution},
	Bernoulli: {Name: "bernoulli", Params: []Type{Real}, Result: Distribution},
	Sample:    {Name: "sample", Params: []Type{Distribution}, Result: Real},
	Observe:   {Name: "observe", Params: []Type{Distribution, Real}, Result: None},
	Query:     {Name: "query", Params: []Type{Real}, Result: None},
}

// Spec returns the catalog row for op. The second return is false for
// values outside the operator range, including the iteration bound.
func Spec(op Operator) (OpSpec, bool) {
	if op < 0 || op >= lastOperator {
		return OpSpec{}, false
	}
	return catalog[op], true
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, 0, int(lastOperator))
	for op := Operator(0); op < lastOperator; op++ {
		ops = append(ops, op)
	}
	return ops
}
