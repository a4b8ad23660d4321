// Package render is the serialization boundary between the overlay engine
// and whatever presents it. It flattens an overlay into plain records in a
// stable, documented order (segment order = buffer order, node order =
// discovery order) so downstream templating is deterministic and testable
// independent of the presentation technology.
package render

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/walteh/spanviz/pkg/overlay"
	"github.com/walteh/spanviz/pkg/span"
	"gitlab.com/tozd/go/errors"
)

// SegmentRecord is the serialized form of one overlay segment.
type SegmentRecord struct {
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Text        string `json:"text"`
	// CoveringNodeIDs is ordered outermost tree position first.
	CoveringNodeIDs []int `json:"coveringNodeIds"`
}

// NodeRecord describes one token-tree node for the presentation layer.
// Nodes without a range keep their label and tree position so a sidebar can
// still list them; they never appear in any segment's covering list.
type NodeRecord struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Parent      int    `json:"parent"` // -1 for roots
	StartOffset *int   `json:"startOffset,omitempty"`
	EndOffset   *int   `json:"endOffset,omitempty"`
}

// NodeIndexRecord maps one node to the segments it covers, in buffer order.
type NodeIndexRecord struct {
	NodeID     int   `json:"nodeId"`
	SegmentIDs []int `json:"segmentIds"`
}

// BoundaryRecord maps one boundary point to its adjacent segments.
type BoundaryRecord struct {
	Offset int   `json:"offset"`
	Before []int `json:"before"`
	After  []int `json:"after"`
}

// Document is the complete serialized overlay: everything an interactive
// view needs, with no recomputation required on the consumer side.
type Document struct {
	ID         string            `json:"id"`
	Buffer     string            `json:"buffer"`
	Segments   []SegmentRecord   `json:"segments"`
	Nodes      []NodeRecord      `json:"nodes"`
	NodeIndex  []NodeIndexRecord `json:"nodeIndex"`
	Boundaries []BoundaryRecord  `json:"boundaries"`
}

// NewDocument serializes an overlay and its tree into a Document, stamped
// with a fresh identity.
func NewDocument(tree *span.Tree, o *overlay.Overlay) (*Document, error) {
	doc := &Document{
		ID:     uuid.New().String(),
		Buffer: o.Buffer(),
	}

	for _, seg := range o.Segments() {
		rec := SegmentRecord{
			StartOffset:     int(seg.Range.Start),
			EndOffset:       int(seg.Range.End),
			Text:            o.Text(seg),
			CoveringNodeIDs: make([]int, 0, len(seg.Covering)),
		}
		for _, id := range seg.Covering {
			rec.CoveringNodeIDs = append(rec.CoveringNodeIDs, int(id))
		}
		doc.Segments = append(doc.Segments, rec)
	}

	for _, node := range tree.Nodes() {
		rec := NodeRecord{ID: int(node.ID), Label: node.Label, Parent: int(node.Parent)}
		if node.Range != nil {
			start, end := int(node.Range.Start), int(node.Range.End)
			rec.StartOffset, rec.EndOffset = &start, &end
		}
		doc.Nodes = append(doc.Nodes, rec)
	}

	for _, id := range o.Nodes() {
		segIDs, err := o.SegmentsFor(id)
		if err != nil {
			return nil, errors.Errorf("indexing node %d: %w", id, err)
		}
		rec := NodeIndexRecord{NodeID: int(id), SegmentIDs: make([]int, 0, len(segIDs))}
		for _, sid := range segIDs {
			rec.SegmentIDs = append(rec.SegmentIDs, int(sid))
		}
		doc.NodeIndex = append(doc.NodeIndex, rec)
	}

	for _, b := range o.Boundaries() {
		rec := BoundaryRecord{Offset: int(b.Pos)}
		for _, sid := range b.Before {
			rec.Before = append(rec.Before, int(sid))
		}
		for _, sid := range b.After {
			rec.After = append(rec.After, int(sid))
		}
		doc.Boundaries = append(doc.Boundaries, rec)
	}

	return doc, nil
}

// Encode writes the document as indented JSON. Field and record order is
// stable for a given overlay, so repeated encodings of unchanged input are
// byte-identical apart from the document ID.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Errorf("encoding overlay document: %w", err)
	}
	return nil
}

// Decode parses a document previously written by Encode.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Errorf("decoding overlay document: %w", err)
	}
	return &doc, nil
}

// Reconstruct concatenates the segment texts and checks they rebuild the
// covered slice of the buffer exactly. It is the round-trip guarantee of
// the serialization contract.
func (d *Document) Reconstruct() (string, error) {
	if len(d.Segments) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, seg := range d.Segments {
		sb.WriteString(seg.Text)
	}
	start, end := d.Segments[0].StartOffset, d.Segments[len(d.Segments)-1].EndOffset
	if start < 0 || end > len(d.Buffer) || start > end {
		return "", errors.Errorf("document extent [%d,%d) does not fit buffer of length %d", start, end, len(d.Buffer))
	}
	want := d.Buffer[start:end]
	if sb.String() != want {
		return "", errors.Errorf("segments do not reconstruct buffer extent [%d,%d)", start, end)
	}
	return sb.String(), nil
}

// CoveringAt returns the covering node IDs (outermost first) at a byte
// offset, re-deriving them from the serialized segments. It exists so
// consumers can be tested against the engine's own lookups.
func (d *Document) CoveringAt(offset int) []int {
	for _, seg := range d.Segments {
		if seg.StartOffset == seg.EndOffset {
			continue
		}
		if offset >= seg.StartOffset && offset < seg.EndOffset {
			return seg.CoveringNodeIDs
		}
	}
	return nil
}
