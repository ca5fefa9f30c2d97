package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterConfig = `# polars configuration
seed: 0 # 0 draws a fresh seed from the clock
out_dir: out
corpus_path: .polars/corpus.db

generate:
  min_rows: 0
  max_rows: 50
  min_cols: 1
  max_cols: 8
  null_probability: 0.1
  allow_infinity: true

profiles:
  wide:
    cols: 32
    rows: 16
  dense:
    null_probability: 0.0
    chunked: never
  hostile:
    null_probability: 0.5
    chunked: always
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a polars project",
		Long: `Initialize a polars project with a starter configuration.

This creates:
  - polars.yaml with a base generate section and example profiles
  - out/ directory for exported frames
  - .polars/ directory for the failure corpus`,
		Example: `  # Initialize in current directory
  polars init

  # Initialize in a new directory
  polars init my-project

  # Force overwrite existing config
  polars init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "polars.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("polars.yaml already exists. Use --force to overwrite")
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	for _, sub := range []string{"out", ".polars"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", sub, err)
		}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "  created polars.yaml")
	_, _ = fmt.Fprintln(out, "  created out/")
	_, _ = fmt.Fprintln(out, "  created .polars/")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "polars project initialized!")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  1. Tune the generate section in polars.yaml")
	_, _ = fmt.Fprintln(out, "  2. Run 'polars sample' to preview a frame")
	_, _ = fmt.Fprintln(out, "  3. Run 'polars export --count 10' to write CSV files")

	return nil
}
