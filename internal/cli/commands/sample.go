package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/parametric"
)

// SampleOptions holds options for the sample command.
type SampleOptions struct {
	Format string
}

// NewSampleCommand creates the sample command.
func NewSampleCommand() *cobra.Command {
	opts := &SampleOptions{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw one random frame and print it",
		Long: `Draw a single frame from the active generation profile and print it.

The draw is reproducible: pass --seed (or set seed in polars.yaml) to get
the same frame again. Construction failures are recorded in the failure
corpus for later inspection with 'polars corpus'.`,
		Example: `  # Draw with the base profile
  polars sample

  # Pin shape and dtypes
  polars sample --rows 10 --cols 4 --dtypes int64,utf8,datetime

  # Reproduce a previous draw
  polars sample --seed 12345

  # Draw with a named profile, as CSV
  polars sample --profile wide --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			spec, err := cc.Cfg.Generate.FrameSpec()
			if err != nil {
				return err
			}
			spec.Logger = cc.Logger
			spec.ReproTo = cmd.ErrOrStderr()
			spec.Failures = cc.Corpus

			gen, err := parametric.Frames(spec)
			if err != nil {
				return err
			}

			src := draw.NewSource(cc.Cfg.Seed)
			res, err := gen.Draw(src)
			if err != nil {
				return fmt.Errorf("draw failed (seed %d): %w", src.Seed(), err)
			}
			f, err := res.Collect()
			if err != nil {
				return fmt.Errorf("collect failed (seed %d): %w", src.Seed(), err)
			}

			cc.Logger.Debug("drew frame", "seed", src.Seed(), "rows", f.NumRows(), "columns", f.NumCols())

			return renderFrame(cmd.OutOrStdout(), f, opts.Format)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format (table|csv|json|markdown)")
	addGenerationFlags(cmd)

	return cmd
}
