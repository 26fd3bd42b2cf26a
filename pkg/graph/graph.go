package graph

// Graph is the immutable result of validating a node list. Nodes are
// sorted by ascending sequence number and every parent reference points
// backward, so iteration order is validated topological order. A built
// Graph is never mutated and is therefore safe for unsynchronized
// concurrent reads.
type Graph struct {
	nodes   []Node
	queries []NodeID // query index -> node sequence number
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given sequence number, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// Nodes returns the full node sequence in topological order.
// The slice is shared with the graph; callers must not modify it.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// NumQueries returns the number of query nodes in the graph.
func (g *Graph) NumQueries() int {
	return len(g.queries)
}

// Query returns the query node assigned the given query index.
func (g *Graph) Query(index int) (*Node, bool) {
	if index < 0 || index >= len(g.queries) {
		return nil, false
	}
	return &g.nodes[g.queries[index]], true
}
