package graph

// NodeID identifies a node by its sequence number: the zero-based
// position the node was assigned at creation. Parent references are
// NodeIDs, and a valid graph only ever references backward, so the
// sequence number doubles as a topological-order proof.
type NodeID int

// Node is the fundamental element of a model graph.
type Node struct {
	Seq  NodeID   // creation-order sequence number, unique per graph
	Op   Operator // what this node computes
	Type Type     // result type, per the operator catalog
	Data NodeData // operator-specific payload
}

// NodeData is the interface for operator-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Parents returns the ordered parent references of n, or nil for
// nodes without parents (constants, malformed payloads).
func (n *Node) Parents() []NodeID {
	switch d := n.Data.(type) {
	case OperatorData:
		return d.Parents
	case QueryData:
		return d.Parents
	}
	return nil
}
