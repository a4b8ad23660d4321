package span

// Ranged is one entry of the flattened tree: a node that carries a usable
// range, annotated with its position in the traversal. Depth and Discovery
// describe where the node sits in the tree, not where its range sits in the
// buffer; a child's range may lie entirely outside its parent's. They exist
// only as deterministic tie-breakers for the overlay's stacking order.
type Ranged struct {
	Node      NodeID
	Range     Range
	Depth     int
	Discovery int
}

// Flatten walks the tree depth-first in pre-order (parent before children,
// children in source order) and collects every node that carries a range.
// Discovery indices are assigned to all nodes visited, ranged or not, so a
// node's rank is stable regardless of which siblings carry spans.
func (t *Tree) Flatten() []Ranged {
	var out []Ranged
	discovery := 0

	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		node := t.nodes[id]
		if node.Range != nil {
			out = append(out, Ranged{
				Node:      id,
				Range:     *node.Range,
				Depth:     depth,
				Discovery: discovery,
			})
		}
		discovery++
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}

	for _, root := range t.roots {
		walk(root, 0)
	}
	return out
}
