package span_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/spanviz/pkg/span"
)

func rangePtr(start, end span.Pos) *span.Range {
	r := span.NewRange(start, end)
	return &r
}

func TestTreeBuilder(t *testing.T) {
	b := span.NewTreeBuilder("let x = 1;")

	root := b.Add(span.NoParent, "stmt", rangePtr(0, 10))
	kw := b.Add(root, "let", rangePtr(0, 3))
	name := b.Add(root, "x", nil)
	val := b.Add(root, "1", rangePtr(8, 9))

	tree, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, []span.NodeID{root}, tree.Roots())

	got, ok := tree.Node(root)
	require.True(t, ok)
	assert.Equal(t, []span.NodeID{kw, name, val}, got.Children)
	assert.Equal(t, span.NoParent, got.Parent)

	unranged, ok := tree.Node(name)
	require.True(t, ok)
	assert.Nil(t, unranged.Range)
	assert.Equal(t, root, unranged.Parent)

	assert.Equal(t, "let", tree.Slice(span.NewRange(0, 3)))

	_, ok = tree.Node(span.NodeID(99))
	assert.False(t, ok)
}

func TestTreeBuilderInvalidRanges(t *testing.T) {
	tests := []struct {
		name    string
		rng     span.Range
		wantMsg string
	}{
		{name: "start after end", rng: span.NewRange(7, 3), wantMsg: "invalid range [7,3)"},
		{name: "end past buffer", rng: span.NewRange(0, 99), wantMsg: "exceeds buffer length 5"},
		{name: "negative start", rng: span.NewRange(-2, 3), wantMsg: "invalid range [-2,3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := span.NewTreeBuilder("hello")
			b.Add(span.NoParent, "bad", &tt.rng)

			tree, err := b.Build()
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var invalid *span.InvalidRangeError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, span.NodeID(0), invalid.Node)
			assert.Equal(t, "bad", invalid.Label)
		})
	}
}

func TestTreeBuilderAggregatesAllViolations(t *testing.T) {
	b := span.NewTreeBuilder("hello")
	b.Add(span.NoParent, "ok", rangePtr(0, 5))
	b.Add(span.NoParent, "bad1", rangePtr(4, 2))
	b.Add(span.NoParent, "bad2", rangePtr(0, 50))

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad1")
	assert.Contains(t, err.Error(), "bad2")
	assert.Equal(t, 2, strings.Count(err.Error(), "node"))
}

func TestFlatten(t *testing.T) {
	// shape:           a (ranged)
	//                 / \
	//     (no range) b   d (ranged, outside a's range)
	//                |
	//       (ranged) c
	b := span.NewTreeBuilder("0123456789")
	a := b.Add(span.NoParent, "a", rangePtr(0, 4))
	bn := b.Add(a, "b", nil)
	c := b.Add(bn, "c", rangePtr(6, 9))
	d := b.Add(a, "d", rangePtr(8, 10))

	tree, err := b.Build()
	require.NoError(t, err)

	flat := tree.Flatten()
	require.Len(t, flat, 3)

	assert.Equal(t, span.Ranged{Node: a, Range: span.NewRange(0, 4), Depth: 0, Discovery: 0}, flat[0])
	assert.Equal(t, span.Ranged{Node: c, Range: span.NewRange(6, 9), Depth: 2, Discovery: 2}, flat[1])
	assert.Equal(t, span.Ranged{Node: d, Range: span.NewRange(8, 10), Depth: 1, Discovery: 3}, flat[2])
}

func TestFlattenEmptyTree(t *testing.T) {
	tree, err := span.NewTreeBuilder("text").Build()
	require.NoError(t, err)
	assert.Empty(t, tree.Flatten())
}
