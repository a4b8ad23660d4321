package dump

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/spanviz/pkg/overlay"
	"github.com/walteh/spanviz/pkg/render"
	"github.com/walteh/spanviz/pkg/tokens"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	out   string
	debug bool
}

func NewDumpCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "resolve a token-stream file and print the overlay document as JSON",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&me.out, "out", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), args[0])
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, input string) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().
		Str("component", "dump").
		Timestamp().
		Logger()
	ctx = logger.WithContext(ctx)

	fsys := afero.NewOsFs()

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

	if me.out == "" {
		return doc.Encode(os.Stdout)
	}

	w, err := fsys.Create(me.out)
	if err != nil {
		return errors.Errorf("creating output file: %w", err)
	}
	defer w.Close()

	return doc.Encode(w)
}
