package span

import "fmt"

// InvalidRangeError reports a node whose range violates the input contract:
// Start > End, a negative offset, or End beyond the buffer length. It is a
// hard precondition violation surfaced to the caller; ranges are never
// clamped or repaired.
type InvalidRangeError struct {
	Node      NodeID
	Label     string
	Range     Range
	BufferLen int
}

func (e *InvalidRangeError) Error() string {
	if !e.Range.IsValid() {
		return fmt.Sprintf("invalid range %s on node %d (%q)", e.Range, e.Node, e.Label)
	}
	return fmt.Sprintf("range %s on node %d (%q) exceeds buffer length %d", e.Range, e.Node, e.Label, e.BufferLen)
}
