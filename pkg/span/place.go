package span

import (
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Place is a display coordinate: 1-based line, 1-based column. Columns
// count grapheme clusters, not bytes, so a Place matches what an editor or
// the HTML view shows. The engine itself never computes with Places; they
// exist for labels and diagnostics only.
type Place struct {
	Line   int
	Column int
}

// PlaceOf converts a byte offset into a display coordinate against the
// tree's buffer. Offsets past the end of the buffer report the position
// just past the last character.
func (t *Tree) PlaceOf(p Pos) Place {
	return PlaceAt(t.buffer, p)
}

// PlaceAt converts a byte offset into a 1-based line/column pair over text.
func PlaceAt(text string, p Pos) Place {
	offset := int(p)
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	before := text[:offset]
	line := strings.Count(before, "\n") + 1

	lineStart := strings.LastIndexByte(before, '\n') + 1
	clusters, err := textseg.TokenCount([]byte(before[lineStart:]), textseg.ScanGraphemeClusters)
	if err != nil {
		// ScanGraphemeClusters cannot fail on valid input; fall back to bytes.
		clusters = offset - lineStart
	}
	return Place{Line: line, Column: clusters + 1}
}
