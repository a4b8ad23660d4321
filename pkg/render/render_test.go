package render_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/spanviz/pkg/overlay"
	"github.com/walteh/spanviz/pkg/render"
	"github.com/walteh/spanviz/pkg/span"
)

func buildModel(t *testing.T) (*span.Tree, *overlay.Overlay) {
	t.Helper()
	b := span.NewTreeBuilder("abcdefghijkl")
	outer := span.NewRange(0, 10)
	inner := span.NewRange(3, 7)
	tail := span.NewRange(5, 12)
	b.Add(span.NoParent, "outer", &outer)
	b.Add(span.NoParent, "inner", &inner)
	b.Add(span.NoParent, "unranged", nil)
	b.Add(span.NoParent, "tail", &tail)
	tree, err := b.Build()
	require.NoError(t, err)

	model, err := overlay.Resolve(context.Background(), tree)
	require.NoError(t, err)
	return tree, model
}

func TestNewDocument(t *testing.T) {
	tree, model := buildModel(t)

	doc, err := render.NewDocument(tree, model)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "abcdefghijkl", doc.Buffer)
	require.Len(t, doc.Segments, 5)

	assert.Equal(t, 0, doc.Segments[0].StartOffset)
	assert.Equal(t, 3, doc.Segments[0].EndOffset)
	assert.Equal(t, "abc", doc.Segments[0].Text)
	assert.Equal(t, []int{0}, doc.Segments[0].CoveringNodeIDs)

	// nodes keep tree order, including the rangeless one
	require.Len(t, doc.Nodes, 4)
	assert.Equal(t, "unranged", doc.Nodes[2].Label)
	assert.Nil(t, doc.Nodes[2].StartOffset)
	require.NotNil(t, doc.Nodes[0].StartOffset)
	assert.Equal(t, 0, *doc.Nodes[0].StartOffset)

	// index records follow discovery order and skip rangeless nodes
	require.Len(t, doc.NodeIndex, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{doc.NodeIndex[0].NodeID, doc.NodeIndex[1].NodeID, doc.NodeIndex[2].NodeID})
	assert.Equal(t, []int{0, 1, 2, 3}, doc.NodeIndex[0].SegmentIDs)

	require.Len(t, doc.Boundaries, 6)
	assert.Equal(t, 0, doc.Boundaries[0].Offset)
	assert.Equal(t, 12, doc.Boundaries[5].Offset)
}

func TestDocumentRoundTrip(t *testing.T) {
	tree, model := buildModel(t)

	doc, err := render.NewDocument(tree, model)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))

	decoded, err := render.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	text, err := decoded.Reconstruct()
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijkl", text)
}

func TestDocumentCoveringAtMatchesEngine(t *testing.T) {
	tree, model := buildModel(t)

	doc, err := render.NewDocument(tree, model)
	require.NoError(t, err)

	for pos := 0; pos < len(doc.Buffer); pos++ {
		seg, ok := model.SegmentAt(span.Pos(pos))
		require.True(t, ok, "position %d", pos)

		want := make([]int, 0, len(seg.Covering))
		for _, id := range seg.Covering {
			want = append(want, int(id))
		}
		got := doc.CoveringAt(pos)
		if len(want) == 0 {
			assert.Empty(t, got, "position %d", pos)
		} else {
			assert.Equal(t, want, got, "position %d", pos)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	tree, err := span.NewTreeBuilder("nothing ranged here").Build()
	require.NoError(t, err)
	model, err := overlay.Resolve(context.Background(), tree)
	require.NoError(t, err)

	doc, err := render.NewDocument(tree, model)
	require.NoError(t, err)
	assert.Empty(t, doc.Segments)

	text, err := doc.Reconstruct()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestReconstructDetectsCorruption(t *testing.T) {
	tree, model := buildModel(t)

	doc, err := render.NewDocument(tree, model)
	require.NoError(t, err)

	doc.Segments[1].Text = "XX"
	_, err = doc.Reconstruct()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconstruct")
}
