package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bertiewooster/polars/internal/corpus"
)

// NewCorpusCommand creates the corpus command group.
func NewCorpusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect recorded construction failures",
		Long: `Inspect the corpus of unique frame-construction failures.

Every construction failure observed while drawing is recorded once, keyed
by its reproduction block. Use 'list' for an overview, 'show' for the full
reproduction source of one entry, and 'clear' to start fresh.`,
	}

	cmd.AddCommand(newCorpusListCommand())
	cmd.AddCommand(newCorpusShowCommand())
	cmd.AddCommand(newCorpusClearCommand())

	return cmd
}

func newCorpusListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			failures, err := cc.Corpus.List()
			if err != nil {
				return err
			}

			if len(failures) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(0 failures)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Recorded", "Seed", "Error"})
			for _, f := range failures {
				t.AppendRow(table.Row{shortID(f.ID), f.Time.Format(time.RFC3339), f.Seed, f.Err})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d failures)\n", len(failures))
			return nil
		},
	}
}

func newCorpusShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one failure with its reproduction source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := findFailure(cc, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "ID:    %s\n", f.ID)
			_, _ = fmt.Fprintf(out, "Time:  %s\n", f.Time.Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, "Seed:  %d\n", f.Seed)
			_, _ = fmt.Fprintf(out, "Error: %s\n", f.Err)
			_, _ = fmt.Fprint(out, f.Repro)
			return nil
		},
	}
}

func newCorpusClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := cc.Corpus.Len()
			if err != nil {
				return err
			}
			if err := cc.Corpus.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failures\n", n)
			return nil
		},
	}
}

// findFailure resolves a full or prefix ID against the corpus.
func findFailure(cc *CommandContext, id string) (*corpus.Failure, error) {
	failures, err := cc.Corpus.List()
	if err != nil {
		return nil, err
	}

	var match *corpus.Failure
	for i := range failures {
		if failures[i].ID == id {
			return &failures[i], nil
		}
		if strings.HasPrefix(failures[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous failure id %q", id)
			}
			match = &failures[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("failure not found: %s", id)
	}
	return match, nil
}

// shortID truncates a UUID for table display; show accepts the prefix back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
