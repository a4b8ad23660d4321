package tokens

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/spanviz/pkg/span"
	"gitlab.com/tozd/go/errors"
)

// NoNode marks a rendered part that belongs to no token (indentation,
// spacing, forced newlines).
const NoNode span.NodeID = -1

// Part is one chunk of rendered text, attributed to the token node that
// produced it.
type Part struct {
	Text string
	Node span.NodeID
}

// Rendered is the output of Render: the pretty-printed form of the token
// stream, part by part, plus the span tree binding every token to its
// source span. The tree's buffer is the ORIGINAL source, not the rendered
// text; the overlay engine partitions the source, while Parts drive the
// generated-code pane.
type Rendered struct {
	Parts []Part
	Text  string
	Tree  *span.Tree
}

// needsSpace tracks whether the next emitted token must be preceded by a
// space, mirroring the lexer's spacing rules.
type needsSpace int

const (
	spaceNever needsSpace = iota
	spaceAlways
	spaceIfNotPunct
)

type visitor struct {
	builder *span.TreeBuilder
	parts   []Part
	indent  int
	newline bool
	space   needsSpace
}

// Render pretty-prints the token stream and builds the span tree over the
// stream's source buffer. Formatting is deterministic: braces open an
// indent level, `;` and `}` force newlines, and spacing between tokens
// follows each punct's recorded spacing. Construction fails with the
// aggregated InvalidRange report if any token span does not fit the source.
func Render(ctx context.Context, s *Stream) (*Rendered, error) {
	v := &visitor{
		builder: span.NewTreeBuilder(s.Source),
		newline: true,
	}
	v.visitAll(span.NoParent, s.Tokens)

	tree, err := v.builder.Build()
	if err != nil {
		return nil, errors.Errorf("rendering token stream: %w", err)
	}

	var sb strings.Builder
	for _, part := range v.parts {
		sb.WriteString(part.Text)
	}
	zerolog.Ctx(ctx).Debug().Int("tokens", tree.Len()).Int("parts", len(v.parts)).Msg("rendered token stream")

	return &Rendered{Parts: v.parts, Text: sb.String(), Tree: tree}, nil
}

func (v *visitor) visitAll(parent span.NodeID, toks []Token) {
	for _, tok := range toks {
		v.visit(parent, tok)
	}
}

func (v *visitor) visit(parent span.NodeID, tok Token) {
	switch tok.Kind {
	case KindGroup:
		label := tok.Delim.Open() + tok.Delim.Close()
		if label == "" {
			label = "group"
		}
		group := v.builder.Add(parent, label, nil)
		if openText := tok.Delim.Open(); openText != "" {
			v.visitStr(openText, v.builder.Add(group, openText, toRange(tok.OpenSpan)))
		}
		v.visitAll(group, tok.Children)
		if closeText := tok.Delim.Close(); closeText != "" {
			v.visitStr(closeText, v.builder.Add(group, closeText, toRange(tok.CloseSpan)))
		}
	case KindPunct:
		if v.space == spaceAlways {
			v.addStr(" ", NoNode)
		}
		v.visitStr(tok.Text, v.builder.Add(parent, tok.Text, toRange(tok.Span)))
		if tok.Spacing != SpacingJoint {
			v.space = spaceAlways
		}
	default: // ident, literal
		if v.space != spaceNever {
			v.addStr(" ", NoNode)
		}
		v.visitStr(tok.Text, v.builder.Add(parent, tok.Text, toRange(tok.Span)))
		v.space = spaceIfNotPunct
	}
}

func (v *visitor) visitStr(text string, node span.NodeID) {
	if text == "" {
		return
	}
	if text == "}" {
		v.indent--
		if !v.newline {
			v.newline = true
			v.addStr("\n", NoNode)
		}
	}
	if v.newline {
		v.newline = false
		for i := 0; i < v.indent; i++ {
			v.addStr("    ", NoNode)
		}
	}
	v.addStr(text, node)
	switch text {
	case "{":
		v.indent++
		v.newline = true
		v.addStr("\n", NoNode)
	case ";", "}":
		v.newline = true
		v.addStr("\n", NoNode)
	}
	if v.newline {
		v.space = spaceNever
	}
}

func (v *visitor) addStr(text string, node span.NodeID) {
	v.parts = append(v.parts, Part{Text: text, Node: node})
}

func toRange(s *Span) *span.Range {
	if s == nil {
		return nil
	}
	r := span.NewRange(span.Pos(s.Start), span.Pos(s.End))
	return &r
}
