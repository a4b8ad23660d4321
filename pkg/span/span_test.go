package span_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/spanviz/pkg/span"
)

func TestRangeIsValid(t *testing.T) {
	tests := []struct {
		name string
		rng  span.Range
		want bool
	}{
		{name: "normal range", rng: span.NewRange(0, 5), want: true},
		{name: "zero-length range", rng: span.NewRange(3, 3), want: true},
		{name: "reversed range", rng: span.NewRange(5, 3), want: false},
		{name: "negative start", rng: span.NewRange(-1, 3), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rng.IsValid())
		})
	}
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name  string
		outer span.Range
		inner span.Range
		want  bool
	}{
		{name: "strict containment", outer: span.NewRange(0, 10), inner: span.NewRange(3, 7), want: true},
		{name: "equal ranges", outer: span.NewRange(3, 7), inner: span.NewRange(3, 7), want: true},
		{name: "partial overlap", outer: span.NewRange(0, 5), inner: span.NewRange(3, 7), want: false},
		{name: "disjoint", outer: span.NewRange(0, 3), inner: span.NewRange(5, 7), want: false},
		{name: "zero-length inside", outer: span.NewRange(0, 10), inner: span.At(4), want: true},
		{name: "zero-length at start boundary", outer: span.NewRange(4, 10), inner: span.At(4), want: true},
		{name: "zero-length at end boundary", outer: span.NewRange(0, 4), inner: span.At(4), want: true},
		{name: "zero-length outside", outer: span.NewRange(0, 4), inner: span.At(5), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outer.Contains(tt.inner))
		})
	}
}

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    span.Range
		b    span.Range
		want bool
	}{
		{name: "overlapping", a: span.NewRange(0, 5), b: span.NewRange(3, 7), want: true},
		{name: "touching ends", a: span.NewRange(0, 3), b: span.NewRange(3, 7), want: false},
		{name: "disjoint", a: span.NewRange(0, 2), b: span.NewRange(5, 7), want: false},
		{name: "zero inside other", a: span.At(4), b: span.NewRange(0, 10), want: true},
		{name: "zero at closed bound", a: span.At(3), b: span.NewRange(0, 3), want: true},
		{name: "equal zeros", a: span.At(4), b: span.At(4), want: true},
		{name: "distinct zeros", a: span.At(4), b: span.At(5), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestPlaceAt(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  span.Pos
		want span.Place
	}{
		{name: "empty text", text: "", pos: 0, want: span.Place{Line: 1, Column: 1}},
		{name: "start of text", text: "fn main() {}", pos: 0, want: span.Place{Line: 1, Column: 1}},
		{name: "middle of first line", text: "fn main() {}", pos: 3, want: span.Place{Line: 1, Column: 4}},
		{name: "start of second line", text: "fn main() {\n    x\n}", pos: 12, want: span.Place{Line: 2, Column: 1}},
		{name: "inside second line", text: "fn main() {\n    x\n}", pos: 16, want: span.Place{Line: 2, Column: 5}},
		{name: "past end clamps", text: "ab", pos: 99, want: span.Place{Line: 1, Column: 3}},
		{name: "multibyte counts clusters not bytes", text: "héllo", pos: 3, want: span.Place{Line: 1, Column: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, span.PlaceAt(tt.text, tt.pos))
		})
	}
}
