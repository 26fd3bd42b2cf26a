package graph

// Validate determines whether nodes form a legal graph. The list may
// come from a Factory or be assembled directly. Checks run in order and
// fail fast on the first violation: sequence integrity, parent
// ordering, catalog conformance (arity and parent types), query index
// density. On success the returned Graph wraps the same node slice
// without copying node content and carries a query-index lookup table.
func Validate(nodes []Node) (*Graph, error) {
	if err := checkSequence(nodes); err != nil {
		return nil, err
	}
	if err := checkParentOrder(nodes); err != nil {
		return nil, err
	}
	if err := checkOperators(nodes); err != nil {
		return nil, err
	}
	queries, err := checkQueryIndices(nodes)
	if err != nil {
		return nil, err
	}
	return &Graph{nodes: nodes, queries: queries}, nil
}

// checkSequence verifies that the node at position i carries sequence
// number i: no gaps, no duplicates, no reordering.
func checkSequence(nodes []Node) error {
	for i := range nodes {
		if nodes[i].Seq != NodeID(i) {
			return violation(&nodes[i], ErrMalformedSequence,
				"position %d holds sequence %d", i, int(nodes[i].Seq))
		}
	}
	return nil
}

// checkParentOrder verifies that every parent reference points strictly
// backward. Because edges can only point to earlier nodes, this single
// check proves the graph acyclic and the listed order topological; no
// cycle-detection traversal is needed.
func checkParentOrder(nodes []Node) error {
	for i := range nodes {
		n := &nodes[i]
		for _, p := range n.Parents() {
			if p < 0 || p >= n.Seq {
				return violation(n, ErrForwardReference,
					"parent %d does not precede node %d", int(p), int(n.Seq))
			}
		}
	}
	return nil
}

// checkOperators verifies every node against the catalog: the operator
// has a catalog row, the payload shape and declared type agree with it,
// the parent count is exact, and each parent's result type matches the
// required type at its position. Nodes are visited in ascending order,
// so a parent's own type has already been verified when it is consulted
// here.
func checkOperators(nodes []Node) error {
	for i := range nodes {
		n := &nodes[i]

		spec, ok := Spec(n.Op)
		if !ok {
			return violation(n, ErrUnknownOperator,
				"no catalog entry for operator %d", int(n.Op))
		}
		if err := checkShape(n); err != nil {
			return err
		}
		if n.Type != spec.Result {
			return violation(n, ErrMalformedNode,
				"declared type %s, catalog says %s", n.Type, spec.Result)
		}

		parents := n.Parents()
		if len(parents) != len(spec.Params) {
			return violation(n, ErrArityMismatch,
				"%d parents, %s takes %d", len(parents), spec.Name, len(spec.Params))
		}
		for pos, p := range parents {
			if got, want := nodes[p].Type, spec.Params[pos]; got != want {
				return violation(n, ErrTypeMismatch,
					"parent %d at position %d is %s, want %s", int(p), pos, got, want)
			}
		}
	}
	return nil
}

// checkShape verifies that the payload variant agrees with the operator tag.
func checkShape(n *Node) error {
	switch n.Data.(type) {
	case ConstantData:
		if n.Op != Constant {
			return violation(n, ErrMalformedNode, "constant payload on %s node", n.Op)
		}
	case QueryData:
		if n.Op != Query {
			return violation(n, ErrMalformedNode, "query payload on %s node", n.Op)
		}
	case OperatorData:
		if n.Op == Constant || n.Op == Query {
			return violation(n, ErrMalformedNode, "operator payload on %s node", n.Op)
		}
	case nil:
		return violation(n, ErrMalformedNode, "missing payload")
	default:
		return violation(n, ErrMalformedNode, "unrecognized payload %T", n.Data)
	}
	return nil
}

// checkQueryIndices verifies that query indices form exactly the dense
// range {0,...,k-1} for k queries, and builds the index -> node lookup
// table used by Graph.Query. With k slots, an index outside [0,k) means
// some in-range index must be missing, so out-of-range reports a gap.
func checkQueryIndices(nodes []Node) ([]NodeID, error) {
	count := 0
	for i := range nodes {
		if _, ok := nodes[i].Data.(QueryData); ok {
			count++
		}
	}

	queries := make([]NodeID, count)
	seen := make([]bool, count)
	for i := range nodes {
		n := &nodes[i]
		qd, ok := n.Data.(QueryData)
		if !ok {
			continue
		}
		if qd.QueryIndex < 0 || qd.QueryIndex >= count {
			return nil, violation(n, ErrQueryIndexGap,
				"query index %d outside dense range 0..%d", qd.QueryIndex, count-1)
		}
		if seen[qd.QueryIndex] {
			return nil, violation(n, ErrDuplicateQueryIndex,
				"query index %d already assigned", qd.QueryIndex)
		}
		seen[qd.QueryIndex] = true
		queries[qd.QueryIndex] = n.Seq
	}
	return queries, nil
}
