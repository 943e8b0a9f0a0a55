package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kissboard/internal/model"
)

func newProjectCmd(a *app) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long:  `Create, list, reorder and delete projects.`,
	}

	projectCmd.AddCommand(&cobra.Command{
		Use:   "new [name]",
		Short: "Create a new project",
		Long: `Create a new project at the end of the project list.

Examples:
  kissboard project new Work
  kissboard project new "Side project"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			project, err := b.CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created project: %s (id: %s)\n", project.Name, shortID(project.ID))
			return nil
		},
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			projects, err := b.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-4s  %-10s  %-20s  %s\n", "#", "ID", "Name", "Tasks")
			fmt.Fprintln(out, strings.Repeat("─", 50))

			total := 0
			for _, p := range projects {
				count, _ := b.CountTasks(cmd.Context(), p.ID)
				total += count
				fmt.Fprintf(out, "  %-4d  %-10s  %-20s  %d\n", p.Position, shortID(p.ID), p.Name, count)
			}

			fmt.Fprintln(out, strings.Repeat("─", 50))
			fmt.Fprintf(out, "  %d projects, %d tasks\n\n", len(projects), total)
			return nil
		},
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "rename [project] [name]",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			project, err := b.ResolveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			name := strings.Join(args[1:], " ")
			updated, err := b.UpdateProject(cmd.Context(), project.ID, model.ProjectPatch{Name: &name})
			if err != nil {
				return fmt.Errorf("failed to rename project: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed: %s → %s\n", project.Name, updated.Name)
			return nil
		},
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "move [project] [position]",
		Short: "Move a project to a position in the list (0 is first)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			project, err := b.ResolveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			moved, err := b.MoveProject(cmd.Context(), project.ID, pos)
			if err != nil {
				return fmt.Errorf("failed to move project: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s to position %d\n", moved.Name, moved.Position)
			return nil
		},
	})

	var yes bool
	deleteCmd := &cobra.Command{
		Use:     "delete [project]",
		Aliases: []string{"rm"},
		Short:   "Delete a project with all of its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			project, err := b.ResolveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			count, err := b.CountTasks(cmd.Context(), project.ID)
			if err != nil {
				return err
			}
			ok, err := a.mustConfirm(cmd, yes, fmt.Sprintf("Delete project %q and its %d tasks?", project.Name, count))
			if err != nil || !ok {
				return err
			}

			if err := b.DeleteProject(cmd.Context(), project.ID); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
			if GetCurrentContext() == project.ID {
				_ = ClearContext()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted project: %s\n", project.Name)
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	projectCmd.AddCommand(deleteCmd)

	return projectCmd
}
