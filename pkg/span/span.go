// Package span defines the source-position model shared by the overlay
// engine: byte offsets, half-open ranges, and the token tree they annotate.
//
// All offsets are 0-based byte offsets into a single source buffer. The
// engine never works in line/column or rune terms internally; display
// coordinates are derived on demand (see Place).
package span

import "fmt"

// Pos is an absolute 0-based byte offset into the source buffer.
type Pos int

// Range is a half-open byte interval [Start, End) over the source buffer.
// A zero-length range (Start == End) is valid and marks a synthesized or
// empty span; it still participates in overlay computation.
type Range struct {
	Start Pos
	End   Pos
}

// NewRange returns the range [start, end).
func NewRange(start, end Pos) Range {
	return Range{Start: start, End: end}
}

// At returns the zero-length range [p, p).
func At(p Pos) Range {
	return Range{Start: p, End: p}
}

// IsValid reports whether the range has non-negative indices and
// Start <= End.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.Start <= r.End
}

// Len returns the byte length of the range, or zero if it is invalid.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.End - r.Start)
}

// IsZero reports whether the range is zero-length.
func (r Range) IsZero() bool {
	return r.Start == r.End
}

// Contains reports whether r covers every position of other. Per the
// boundary-sweep containment rule this is Start <= other.Start and
// End >= other.End, which for a zero-length other means r touches the
// point other.Start on either side.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && r.End >= other.End
}

// Overlaps reports whether r and other share at least one position. Two
// zero-length ranges overlap only when equal; a zero-length range overlaps
// a non-zero one when its point lies within the other's closed bounds.
func (r Range) Overlaps(other Range) bool {
	if r.IsZero() {
		return other.Start <= r.Start && r.Start <= other.End
	}
	if other.IsZero() {
		return r.Start <= other.Start && other.Start <= r.End
	}
	return r.Start < other.End && other.Start < r.End
}

// String formats the range like "[3,7)".
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
