package overlay

import (
	"slices"

	"github.com/creachadair/mds/mapset"
	"github.com/hashicorp/go-multierror"
	"github.com/walteh/spanviz/pkg/span"
	"gitlab.com/tozd/go/errors"
)

// Verify checks the structural invariants of a resolved overlay against the
// tree it was built from: the segments partition the covered extent with no
// gap or overlap, no two adjacent segments have set-equal covering sets,
// and every ranged node covers exactly the segments its range contains.
// All violations are aggregated before returning.
//
// Verify exists for tests and debugging; Resolve upholds these invariants
// by construction.
func Verify(tree *span.Tree, o *Overlay) error {
	var merr *multierror.Error

	segs := o.Segments()
	for i := 1; i < len(segs); i++ {
		prev, cur := segs[i-1], segs[i]
		if cur.Range.Start != prev.Range.End {
			merr = multierror.Append(merr, errors.Errorf("segments %d and %d are not contiguous: %s then %s", prev.ID, cur.ID, prev.Range, cur.Range))
		}
		if !prev.Range.IsZero() && !cur.Range.IsZero() && slices.Equal(prev.Covering, cur.Covering) {
			merr = multierror.Append(merr, errors.Errorf("adjacent segments %d and %d have equal covering sets", prev.ID, cur.ID))
		}
	}

	for _, f := range tree.Flatten() {
		if err := verifyNodeCoverage(o, f); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	return merr.ErrorOrNil()
}

// verifyNodeCoverage checks that the union of segments covering a node
// reconstructs exactly the node's range, and that the node appears in no
// other segment.
func verifyNodeCoverage(o *Overlay, f span.Ranged) error {
	ids, err := o.SegmentsFor(f.Node)
	if err != nil {
		return errors.Errorf("node %d missing from overlay index: %w", f.Node, err)
	}

	mine := mapset.New(ids...)
	next := f.Range.Start
	for _, id := range ids {
		seg, ok := o.Segment(id)
		if !ok {
			return errors.Errorf("node %d indexed with unknown segment %d", f.Node, id)
		}
		if seg.Range.IsZero() {
			continue
		}
		if seg.Range.Start != next {
			return errors.Errorf("coverage of node %d has a gap before segment %d (%s)", f.Node, id, seg.Range)
		}
		next = seg.Range.End
	}
	if !f.Range.IsZero() && next != f.Range.End {
		return errors.Errorf("coverage of node %d stops at %d, want %d", f.Node, next, f.Range.End)
	}

	for _, seg := range o.Segments() {
		covers := slices.Contains(seg.Covering, f.Node)
		if covers && !mine.Has(seg.ID) {
			return errors.Errorf("segment %d covers node %d but is not indexed for it", seg.ID, f.Node)
		}
		if !covers && mine.Has(seg.ID) {
			return errors.Errorf("segment %d indexed for node %d but does not cover it", seg.ID, f.Node)
		}
	}
	return nil
}
