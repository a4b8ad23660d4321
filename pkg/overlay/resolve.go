package overlay

import (
	"context"
	"slices"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/spanviz/pkg/span"
	"gitlab.com/tozd/go/errors"
)

// Resolve partitions the tree's buffer by a boundary sweep over every
// ranged node and returns the resulting overlay.
//
// The partition covers [minStart, maxEnd) over all ranges. Boundaries fall
// only at range start/end points; adjacent candidate segments with
// set-equal covering sets are merged, so the output is in post-merge normal
// form. Stretches covered by no range become gap segments with an empty
// covering set. A zero-length range at point k yields a distinct zero-width
// segment [k,k), kept separate from any neighbor sharing that boundary.
//
// Resolve is deterministic: the same tree always yields the identical
// segment sequence and covering-set orderings. An empty tree (no ranged
// nodes) yields an empty overlay, not an error. A range that is negative or
// extends past the buffer is an upstream precondition violation and aborts
// with an InvalidRangeError rather than being repaired here.
func Resolve(ctx context.Context, tree *span.Tree) (*Overlay, error) {
	flat := tree.Flatten()
	zerolog.Ctx(ctx).Debug().Int("nodes", tree.Len()).Int("ranged", len(flat)).Msg("resolving span overlay")

	o := &Overlay{
		buffer: tree.Buffer(),
		byNode: make(map[span.NodeID][]SegmentID, len(flat)),
	}
	if len(flat) == 0 {
		return o, nil
	}

	for _, f := range flat {
		if !f.Range.IsValid() || int(f.Range.End) > len(tree.Buffer()) {
			node, _ := tree.Node(f.Node)
			return nil, errors.Errorf("resolving overlay: %w", &span.InvalidRangeError{
				Node:      f.Node,
				Label:     node.Label,
				Range:     f.Range,
				BufferLen: len(tree.Buffer()),
			})
		}
	}

	// Flatten yields entries in discovery order already; covering sets
	// computed by scanning it are therefore born in stacking order.
	bounds, zeroPoints := collectBoundaries(flat)

	var segs []Segment
	emit := func(r span.Range) {
		segs = append(segs, Segment{Range: r, Covering: coveringOf(flat, r)})
	}
	for i, b := range bounds {
		if zeroPoints[b] {
			emit(span.At(b))
		}
		if i+1 < len(bounds) {
			emit(span.NewRange(b, bounds[i+1]))
		}
	}

	segs = mergeAdjacent(segs)

	for i := range segs {
		segs[i].ID = SegmentID(i)
	}
	o.segments = segs
	o.indexNodes(flat)
	o.indexBoundaries(bounds)

	zerolog.Ctx(ctx).Debug().Int("segments", len(segs)).Int("boundaries", len(bounds)).Msg("resolved span overlay")
	return o, nil
}

// collectBoundaries returns the sorted, deduplicated start/end points of
// all ranges, plus the set of points carrying a zero-length range.
func collectBoundaries(flat []span.Ranged) ([]span.Pos, map[span.Pos]bool) {
	bounds := make([]span.Pos, 0, 2*len(flat))
	zeroPoints := make(map[span.Pos]bool)
	for _, f := range flat {
		bounds = append(bounds, f.Range.Start, f.Range.End)
		if f.Range.IsZero() {
			zeroPoints[f.Range.Start] = true
		}
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })
	bounds = slices.Compact(bounds)
	return bounds, zeroPoints
}

// coveringOf computes the covering set of a candidate segment. A node with
// a zero-length range covers only the zero-width segment at its own point;
// every other node covers the segments its range contains.
func coveringOf(flat []span.Ranged, r span.Range) []span.NodeID {
	var covering []span.NodeID
	for _, f := range flat {
		if f.Range.IsZero() {
			if r.IsZero() && r.Start == f.Range.Start {
				covering = append(covering, f.Node)
			}
			continue
		}
		if f.Range.Contains(r) {
			covering = append(covering, f.Node)
		}
	}
	return covering
}

// mergeAdjacent collapses runs of adjacent segments with set-equal covering
// sets. Covering slices are canonically ordered, so set equality is slice
// equality. Zero-width segments never merge with their neighbors.
func mergeAdjacent(segs []Segment) []Segment {
	out := segs[:0]
	for _, seg := range segs {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if !last.Range.IsZero() && !seg.Range.IsZero() && slices.Equal(last.Covering, seg.Covering) {
				last.Range.End = seg.Range.End
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

func (o *Overlay) indexNodes(flat []span.Ranged) {
	o.nodeOrder = make([]span.NodeID, 0, len(flat))
	for _, f := range flat {
		o.nodeOrder = append(o.nodeOrder, f.Node)
		if _, ok := o.byNode[f.Node]; !ok {
			o.byNode[f.Node] = []SegmentID{}
		}
	}
	for _, seg := range o.segments {
		for _, id := range seg.Covering {
			o.byNode[id] = append(o.byNode[id], seg.ID)
		}
	}
	for i, seg := range o.segments {
		if !seg.Range.IsZero() {
			o.nonZero = append(o.nonZero, i)
		}
	}
}

func (o *Overlay) indexBoundaries(bounds []span.Pos) {
	o.boundaries = make([]Boundary, 0, len(bounds))
	for _, b := range bounds {
		boundary := Boundary{Pos: b}
		for _, seg := range o.segments {
			if seg.Range.IsZero() {
				if seg.Range.Start == b {
					boundary.After = append(boundary.After, seg.ID)
				}
				continue
			}
			if seg.Range.End == b {
				boundary.Before = append(boundary.Before, seg.ID)
			}
			if seg.Range.Start == b {
				boundary.After = append(boundary.After, seg.ID)
			}
		}
		o.boundaries = append(o.boundaries, boundary)
	}
}
