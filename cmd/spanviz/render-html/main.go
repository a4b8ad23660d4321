package render_html

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/spanviz/pkg/htmlviz"
	"github.com/walteh/spanviz/pkg/overlay"
	"github.com/walteh/spanviz/pkg/render"
	"github.com/walteh/spanviz/pkg/tokens"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	out   string
	debug bool
}

func NewRenderHTMLCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "render-html [patterns...]",
		Short: "render token-stream files into interactive span overlay pages",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVar(&me.out, "out", ".", "directory to write HTML files into")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), args)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, patterns []string) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().
		Str("component", "render-html").
		Timestamp().
		Logger()
	ctx = logger.WithContext(ctx)

	fsys := afero.NewOsFs()

	var inputs []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return errors.Errorf("bad input pattern %q: %w", pattern, err)
		}
		inputs = append(inputs, matches...)
	}
	if len(inputs) == 0 {
		return errors.New("no input files matched")
	}

	if err := fsys.MkdirAll(me.out, 0o755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}

	for _, input := range inputs {
		target := filepath.Join(me.out, htmlName(input))
		if err := me.renderOne(ctx, fsys, input, target); err != nil {
			return errors.Errorf("rendering %s: %w", input, err)
		}
		zerolog.Ctx(ctx).Info().Str("input", input).Str("output", target).Msg("rendered overlay")
	}

	return nil
}

// renderOne runs the full pipeline for a single token-stream file. Each
// invocation is independent; no state is carried between inputs.
func (me *Handler) renderOne(ctx context.Context, fsys afero.Fs, input, target string) error {
	f, err := fsys.Open(input)
	if err != nil {
		return errors.Errorf("opening input: %w", err)
	}
	defer f.Close()

	stream, err := tokens.DecodeStream(f)
	if err != nil {
		return err
	}

	rendered, err := tokens.Render(ctx, stream)
	if err != nil {
		return err
	}

	model, err := overlay.Resolve(ctx, rendered.Tree)
	if err != nil {
		return err
	}

	doc, err := render.NewDocument(rendered.Tree, model)
	if err != nil {
		return err
	}

	return htmlviz.Write(ctx, fsys, target, rendered, model, doc)
}

func htmlName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".html"
}
