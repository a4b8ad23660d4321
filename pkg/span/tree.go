package span

import (
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// NodeID identifies a node within its Tree. IDs are dense, 0-based, and
// assigned in insertion order, which for trees built top-down equals the
// pre-order discovery index.
type NodeID int

// NoParent marks a root node's parent reference.
const NoParent NodeID = -1

// Node is one element of the token tree: a stable identifier, a display
// label (opaque to the engine), an optional source range, and ordered
// children. A nil Range means the producer had no usable span for this
// token; such nodes are excluded from partitioning but stay reachable
// through the tree.
type Node struct {
	ID       NodeID
	Label    string
	Range    *Range
	Parent   NodeID
	Children []NodeID
}

// Tree is an immutable arena of nodes over a single source buffer.
// Parent/child links are IDs into the arena, never pointers, so the
// structure is trivially copyable and cycle-free.
type Tree struct {
	buffer string
	nodes  []Node
	roots  []NodeID
}

// Buffer returns the source text the tree's ranges address.
func (t *Tree) Buffer() string { return t.buffer }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the top-level node IDs in source order.
func (t *Tree) Roots() []NodeID { return t.roots }

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Nodes returns the full arena in ID order. The slice is shared with the
// tree and must not be mutated.
func (t *Tree) Nodes() []Node { return t.nodes }

// Slice returns the buffer text covered by r.
func (t *Tree) Slice(r Range) string {
	return t.buffer[r.Start:r.End]
}

// TreeBuilder assembles a Tree top-down. Nodes are added parent-first;
// Build validates every range against the buffer before the tree is
// handed out.
type TreeBuilder struct {
	tree Tree
}

// NewTreeBuilder starts a tree over the given source buffer.
func NewTreeBuilder(buffer string) *TreeBuilder {
	return &TreeBuilder{tree: Tree{buffer: buffer}}
}

// Add appends a node under parent (NoParent for a root) and returns its ID.
// A nil rng marks a node with no usable span.
func (b *TreeBuilder) Add(parent NodeID, label string, rng *Range) NodeID {
	id := NodeID(len(b.tree.nodes))
	node := Node{ID: id, Label: label, Parent: parent}
	if rng != nil {
		r := *rng
		node.Range = &r
	}
	b.tree.nodes = append(b.tree.nodes, node)
	if parent == NoParent {
		b.tree.roots = append(b.tree.roots, id)
	} else {
		b.tree.nodes[parent].Children = append(b.tree.nodes[parent].Children, id)
	}
	return id
}

// Build validates every node range and returns the finished tree. On any
// violation it returns nil and an error aggregating one InvalidRangeError
// per offending node; no partial tree is produced.
func (b *TreeBuilder) Build() (*Tree, error) {
	var merr *multierror.Error
	for _, node := range b.tree.nodes {
		if node.Range == nil {
			continue
		}
		if !node.Range.IsValid() || int(node.Range.End) > len(b.tree.buffer) {
			merr = multierror.Append(merr, &InvalidRangeError{
				Node:      node.ID,
				Label:     node.Label,
				Range:     *node.Range,
				BufferLen: len(b.tree.buffer),
			})
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Errorf("building span tree: %w", err)
	}
	tree := b.tree
	return &tree, nil
}
