// Package overlay resolves the possibly-overlapping ranges of a token tree
// into a flat partition of the source buffer.
//
// Token spans are not guaranteed to nest with the tree that carries them: a
// child's range can extend outside its parent's, overlap it partially, or
// sit somewhere unrelated entirely. The resolver therefore ignores tree
// shape when partitioning and uses it only as a deterministic tie-break for
// stacking order. The output is a sequence of segments, each a maximal
// sub-range of the buffer whose set of covering nodes is constant, plus the
// index tables an interactive view needs (node → segments, boundary →
// adjacent segments).
package overlay

import (
	"sort"

	"github.com/walteh/spanviz/pkg/span"
)

// SegmentID indexes a segment within its Overlay's segment sequence.
type SegmentID int

// Segment is a maximal sub-range of the buffer with a constant covering
// set. Segments are contiguous, non-overlapping, and in buffer order;
// zero-width segments mark points where a zero-length range sits.
type Segment struct {
	ID    SegmentID
	Range span.Range

	// Covering lists every node whose range contains this segment, ordered
	// by ascending discovery index (outermost tree position first). The
	// slice is shared with the overlay and must not be mutated.
	Covering []span.NodeID
}

// InnerFirst returns the covering list reversed, innermost tree position
// first, as a fresh slice.
func (s Segment) InnerFirst() []span.NodeID {
	out := make([]span.NodeID, len(s.Covering))
	for i, id := range s.Covering {
		out[len(out)-1-i] = id
	}
	return out
}

// IsGap reports whether no node covers this segment.
func (s Segment) IsGap() bool { return len(s.Covering) == 0 }

// Boundary is one distinct range start/end point, with the segments that
// end at it and the segments that start at it. Zero-width segments are
// listed on the After side of their point.
type Boundary struct {
	Pos    span.Pos
	Before []SegmentID
	After  []SegmentID
}

// Overlay is the resolved model: the segment partition of the covered
// extent plus lookup tables. It is immutable after construction and safe
// for concurrent reads.
type Overlay struct {
	buffer     string
	segments   []Segment
	byNode     map[span.NodeID][]SegmentID
	nodeOrder  []span.NodeID
	boundaries []Boundary

	// nonZero indexes the segments with positive length, for position
	// lookups; zero-width segments contain no position.
	nonZero []int
}

// Buffer returns the source text the overlay partitions.
func (o *Overlay) Buffer() string { return o.buffer }

// Segments returns the full segment sequence in buffer order. The slice is
// shared with the overlay and must not be mutated.
func (o *Overlay) Segments() []Segment { return o.segments }

// Segment returns the segment with the given ID.
func (o *Overlay) Segment(id SegmentID) (Segment, bool) {
	if id < 0 || int(id) >= len(o.segments) {
		return Segment{}, false
	}
	return o.segments[id], true
}

// Text returns the buffer slice a segment covers (empty for zero-width
// segments).
func (o *Overlay) Text(s Segment) string {
	return o.buffer[s.Range.Start:s.Range.End]
}

// Extent returns the covered interval [minStart, maxEnd). ok is false for
// an empty overlay.
func (o *Overlay) Extent() (span.Range, bool) {
	if len(o.segments) == 0 {
		return span.Range{}, false
	}
	return span.NewRange(o.segments[0].Range.Start, o.segments[len(o.segments)-1].Range.End), true
}

// SegmentAt returns the segment containing the given position, by binary
// search over segment start boundaries. Zero-width segments are never
// returned; ok is false when the position lies outside the covered extent.
func (o *Overlay) SegmentAt(p span.Pos) (Segment, bool) {
	i := sort.Search(len(o.nonZero), func(i int) bool {
		return o.segments[o.nonZero[i]].Range.End > p
	})
	if i == len(o.nonZero) {
		return Segment{}, false
	}
	seg := o.segments[o.nonZero[i]]
	if p < seg.Range.Start {
		return Segment{}, false
	}
	return seg, true
}

// SegmentsFor returns, in buffer order, every segment whose covering set
// contains the given node. A node unknown to the overlay (out of range, or
// carrying no span) is a contract violation by the caller and reported as
// an UnresolvedNodeError.
func (o *Overlay) SegmentsFor(id span.NodeID) ([]SegmentID, error) {
	ids, ok := o.byNode[id]
	if !ok {
		return nil, &UnresolvedNodeError{Node: id}
	}
	return ids, nil
}

// Nodes returns the IDs of every ranged node the overlay indexes, in
// discovery order. The slice is shared with the overlay and must not be
// mutated.
func (o *Overlay) Nodes() []span.NodeID { return o.nodeOrder }

// Boundaries returns the distinct range start/end points in ascending
// order, each with its adjacent segments.
func (o *Overlay) Boundaries() []Boundary { return o.boundaries }

// Next returns the segment following id in buffer order.
func (o *Overlay) Next(id SegmentID) (SegmentID, bool) {
	if id < 0 || int(id)+1 >= len(o.segments) {
		return 0, false
	}
	return id + 1, true
}

// Prev returns the segment preceding id in buffer order.
func (o *Overlay) Prev(id SegmentID) (SegmentID, bool) {
	if id <= 0 || int(id) > len(o.segments) {
		return 0, false
	}
	return id - 1, true
}
