// Package htmlviz turns a resolved overlay into a self-contained
// interactive HTML page: generated code on the left, original source on the
// right, with hover highlighting driven by the overlay's covering sets.
// The page carries the full serialized overlay document, so the script
// never recomputes anything the engine already knows.
package htmlviz

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/spanviz/pkg/overlay"
	"github.com/walteh/spanviz/pkg/render"
	"github.com/walteh/spanviz/pkg/tokens"
	"gitlab.com/tozd/go/errors"
)

//go:embed template.html
var templateHTML string

var page = template.Must(template.New("spanviz").Parse(templateHTML))

type pageData struct {
	DocID   string
	Left    template.HTML
	Right   template.HTML
	Payload template.JS
}

// Generate builds the HTML page for one rendered token stream and its
// resolved overlay.
func Generate(ctx context.Context, rendered *tokens.Rendered, o *overlay.Overlay, doc *render.Document) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Errorf("marshaling overlay payload: %w", err)
	}

	data := pageData{
		DocID:   doc.ID,
		Left:    leftPane(rendered),
		Right:   rightPane(o),
		Payload: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, errors.Errorf("executing visualization template: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("doc_id", doc.ID).Int("bytes", buf.Len()).Msg("generated visualization")
	return buf.Bytes(), nil
}

// Write generates the page and writes it through the given filesystem.
func Write(ctx context.Context, fsys afero.Fs, path string, rendered *tokens.Rendered, o *overlay.Overlay, doc *render.Document) error {
	html, err := Generate(ctx, rendered, o, doc)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, path, html, 0o644); err != nil {
		return errors.Errorf("writing visualization to %s: %w", path, err)
	}
	return nil
}

// leftPane renders the generated-code pane: one span per rendered part,
// classed by the token node that produced it.
func leftPane(rendered *tokens.Rendered) template.HTML {
	var sb strings.Builder
	sb.WriteString("<div>")
	for _, part := range rendered.Parts {
		var classes []string
		if part.Node != tokens.NoNode {
			classes = append(classes, fmt.Sprintf("n%d", part.Node))
		}
		writeChunk(&sb, part.Text, classes, false)
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}

// rightPane renders the source pane: one span per overlay segment, classed
// by every node covering it. Zero-width segments appear as thin markers so
// synthesized spans stay visible.
func rightPane(o *overlay.Overlay) template.HTML {
	var sb strings.Builder
	sb.WriteString("<div>")
	for _, seg := range o.Segments() {
		classes := make([]string, 0, len(seg.Covering)+1)
		for _, id := range seg.Covering {
			classes = append(classes, fmt.Sprintf("n%d", id))
		}
		if seg.Range.IsZero() {
			classes = append(classes, "zw")
			writeChunk(&sb, "", classes, true)
			continue
		}
		writeChunk(&sb, o.Text(seg), classes, false)
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}

// writeChunk emits text as classed spans, translating newlines into line
// divs the way the page's CSS expects. forceEmpty keeps zero-width chunks
// in the output.
func writeChunk(sb *strings.Builder, text string, classes []string, forceEmpty bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("</div><div>")
		}
		if line == "" && !forceEmpty {
			continue
		}
		if len(classes) == 0 {
			sb.WriteString(template.HTMLEscapeString(line))
			continue
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(strings.Join(classes, " "))
		sb.WriteString(`">`)
		sb.WriteString(template.HTMLEscapeString(line))
		sb.WriteString(`</span>`)
	}
}
