package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that every column and the project list are numbered 0..n-1",
		Long: `Check the stored positions of every project and task.

With --fix, broken lists are renumbered in their current order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			violations, err := b.Verify(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify board: %w", err)
			}
			if len(violations) == 0 {
				fmt.Fprintln(out, "✓ All positions are consistent")
				return nil
			}

			for _, v := range violations {
				fmt.Fprintf(out, "✗ %s\n", v)
			}
			if !fix {
				return fmt.Errorf("%d inconsistent lists; run 'kissboard doctor --fix'", len(violations))
			}

			written, err := b.Repair(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to repair board: %w", err)
			}
			fmt.Fprintf(out, "✓ Repaired %d lists (%d records renumbered)\n", len(violations), written)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Renumber inconsistent lists")
	return cmd
}
