package graph

// ConstantData carries the literal value of a Constant node.
// Appended by Factory.AddConstant.
type ConstantData struct {
	Value float64
}

func (ConstantData) nodeData() {}

// OperatorData carries the ordered parent references of an arithmetic,
// distribution, sample, or observe node. Appended by Factory.AddOperator.
type OperatorData struct {
	Parents []NodeID
}

func (OperatorData) nodeData() {}

// QueryData is the payload of a Query node: a single parent plus the
// zero-based query index distinguishing it from the graph's other
// queries. Appended by Factory.AddQuery.
type QueryData struct {
	Parents    []NodeID
	QueryIndex int
}

func (QueryData) nodeData() {}
