package graph

import "fmt"

// Factory accumulates the nodes of one graph in creation order and is
// consumed by a single Build call. It is a single-owner builder: calls
// must be sequential, and any use after Build panics.
type Factory struct {
	nodes     []Node
	nextQuery int
	consumed  bool
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) mustBeBuilding() {
	if f.consumed {
		panic("graph: factory already consumed by Build")
	}
}

// checkParents verifies that every id refers to an already-added node.
func (f *Factory) checkParents(parents []NodeID) error {
	for _, p := range parents {
		if p < 0 || int(p) >= len(f.nodes) {
			return fmt.Errorf("parent %d: %w", int(p), ErrUnknownParent)
		}
	}
	return nil
}

// AddConstant appends a Constant node carrying the literal value and
// returns its freshly assigned id. It always succeeds.
func (f *Factory) AddConstant(value float64) NodeID {
	f.mustBeBuilding()
	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{
		Seq:  id,
		Op:   Constant,
		Type: Real,
		Data: ConstantData{Value: value},
	})
	return id
}

// AddOperator appends an operator node wired to the given parents and
// returns its id. Parent ids must refer to already-added nodes; that is
// the only immediate check. Arity and parent types are deferred to
// Build so graphs can be assembled in stages. Passing Query here is
// equivalent to AddQuery: the node is routed through the query-index
// counter.
func (f *Factory) AddOperator(op Operator, parents []NodeID) (NodeID, error) {
	f.mustBeBuilding()
	if err := f.checkParents(parents); err != nil {
		return 0, err
	}
	if op == Query {
		return f.appendQuery(parents), nil
	}

	ps := make([]NodeID, len(parents))
	copy(ps, parents)

	// Unknown operators carry the zero Type; Build reports them.
	var result Type
	if spec, ok := Spec(op); ok {
		result = spec.Result
	}

	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{
		Seq:  id,
		Op:   op,
		Type: result,
		Data: OperatorData{Parents: ps},
	})
	return id, nil
}

// AddQuery appends a Query node marking parent for extraction and
// returns the node's id, not the query index. The index is zero-based,
// assigned in call order, and read off the returned node's QueryData.
func (f *Factory) AddQuery(parent NodeID) (NodeID, error) {
	f.mustBeBuilding()
	if err := f.checkParents([]NodeID{parent}); err != nil {
		return 0, err
	}
	return f.appendQuery([]NodeID{parent}), nil
}

// appendQuery assigns the next query index and appends the node. A
// wrong parent count is preserved as-is for Build to report.
func (f *Factory) appendQuery(parents []NodeID) NodeID {
	ps := make([]NodeID, len(parents))
	copy(ps, parents)

	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{
		Seq:  id,
		Op:   Query,
		Type: None,
		Data: QueryData{Parents: ps, QueryIndex: f.nextQuery},
	})
	f.nextQuery++
	return id
}

// Node returns the already-added node with the given id for read-only
// inspection.
func (f *Factory) Node(id NodeID) (*Node, error) {
	f.mustBeBuilding()
	if id < 0 || int(id) >= len(f.nodes) {
		return nil, fmt.Errorf("node %d: %w", int(id), ErrUnknownParent)
	}
	return &f.nodes[id], nil
}

// Len returns the number of nodes added so far.
func (f *Factory) Len() int {
	f.mustBeBuilding()
	return len(f.nodes)
}

// Build hands the accumulated nodes to the validator and, on success,
// returns the resulting immutable Graph. The Factory is consumed whether
// Build returns a Graph or a validation error: every further method
// call panics.
func (f *Factory) Build() (*Graph, error) {
	f.mustBeBuilding()
	f.consumed = true
	nodes := f.nodes
	f.nodes = nil
	return Validate(nodes)
}
