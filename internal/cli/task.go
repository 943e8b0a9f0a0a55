package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/model"
)

func newTaskCmd(a *app) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  `Add, list, move, edit and delete tasks.`,
	}

	taskCmd.AddCommand(newTaskAddCmd(a))
	taskCmd.AddCommand(newTaskListCmd(a))
	taskCmd.AddCommand(newTaskShowCmd(a))
	taskCmd.AddCommand(newTaskMoveCmd(a))
	taskCmd.AddCommand(newTaskEditCmd(a))
	taskCmd.AddCommand(newTaskDeleteCmd(a))

	return taskCmd
}

func parseStatusFlag(s string) (model.Status, error) {
	if s == "" {
		return model.StatusTodo, nil
	}
	return model.ParseStatus(strings.ToLower(s))
}

func newTaskAddCmd(a *app) *cobra.Command {
	var (
		project     string
		status      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Long: `Add a new task at the bottom of a column.

Examples:
  kissboard add "Buy groceries"
  kissboard add "Write report" -P work -s doing
  kissboard task add "Fix login" -d "Users see a blank page"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			p, err := currentProject(cmd.Context(), b, project)
			if err != nil {
				return err
			}

			task, err := b.CreateTask(cmd.Context(), p.ID, st, strings.Join(args, " "), description)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to [%s / %s]: %q (id: %s)\n",
				p.Name, task.Status.Label(), task.Title, shortID(task.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "P", "", "Project to add the task to")
	cmd.Flags().StringVarP(&status, "status", "s", "todo", "Column (todo, doing, done)")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Task description")
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var (
		project string
		status  string
		all     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by column",
		Long: `List the board of a project, column by column.

Examples:
  kissboard list
  kissboard list -P work
  kissboard list -s done
  kissboard list --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			var only model.Status
			if status != "" {
				if only, err = model.ParseStatus(strings.ToLower(status)); err != nil {
					return err
				}
			}

			var projects []model.Project
			if all {
				if projects, err = b.ListProjects(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list projects: %w", err)
				}
			} else {
				p, err := currentProject(cmd.Context(), b, project)
				if err != nil {
					return err
				}
				projects = []model.Project{p}
			}

			for _, p := range projects {
				columns, err := b.Columns(cmd.Context(), p.ID)
				if err != nil {
					return fmt.Errorf("failed to list tasks: %w", err)
				}
				printBoard(cmd.OutOrStdout(), p, columns, only)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "P", "", "Project to list")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only this column")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show all projects")
	return cmd
}

func printBoard(out io.Writer, p model.Project, columns []board.Column, only model.Status) {
	fmt.Fprintf(out, "\n📁 %s\n", p.Name)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for _, col := range columns {
		if only != "" && col.Status != only {
			continue
		}
		fmt.Fprintf(out, "%s (%d)\n", col.Status.Label(), len(col.Tasks))
		if len(col.Tasks) == 0 {
			fmt.Fprintln(out, "  —")
		}
		for _, t := range col.Tasks {
			fmt.Fprintf(out, "  %2d. %s  %s\n", t.Position, shortID(t.ID), t.Title)
		}
	}
	fmt.Fprintln(out)
}

func newTaskShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [task]",
		Short: "Show a task with its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			project, err := b.GetProject(cmd.Context(), task.ProjectID)
			if err != nil {
				return err
			}
			images, err := b.ListImages(cmd.Context(), task.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", task.Title)
			fmt.Fprintf(out, "  id:       %s\n", task.ID)
			fmt.Fprintf(out, "  project:  %s\n", project.Name)
			fmt.Fprintf(out, "  column:   %s (position %d)\n", task.Status.Label(), task.Position)
			fmt.Fprintf(out, "  updated:  %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04"))
			if task.Description != "" {
				fmt.Fprintf(out, "\n%s\n", task.Description)
			}
			if len(images) > 0 {
				fmt.Fprintf(out, "\nImages (%d)\n", len(images))
				for _, img := range images {
					fmt.Fprintf(out, "  %s  %-24s %-12s %d bytes\n", shortID(img.ID), img.Name, img.MimeType, img.Size)
				}
			}
			return nil
		},
	}
}

func newTaskMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move [task] [status] [position]",
		Short: "Move a task to a column and position",
		Long: `Move a task within its column or to another one. Position 0 is the
top; without a position the task goes to the bottom.

Examples:
  kissboard task move 3f2a doing
  kissboard task move 3f2a todo 0`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			pos := endOfColumn
			if len(args) == 3 {
				if pos, err = parsePosition(args[2]); err != nil {
					return err
				}
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			moved, err := b.MoveTask(cmd.Context(), task.ID, status, pos)
			if err != nil {
				return fmt.Errorf("failed to move task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %q to %s, position %d\n", moved.Title, moved.Status.Label(), moved.Position)
			return nil
		},
	}
}

// newDoneCmd moves a task to the bottom of the Done column
func newDoneCmd(a *app) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done [task]",
		Short: "Move a task to Done",
		Long: `Move a task to the bottom of the Done column.

Examples:
  kissboard done 3f2a
  kissboard done 3f2a --undo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			target := model.StatusDone
			if undo {
				target = model.StatusTodo
			}
			moved, err := b.MoveTask(cmd.Context(), task.ID, target, endOfColumn)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			if undo {
				fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: %q\n", moved.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: %q\n", moved.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Move the task back to To Do")
	return cmd
}

func newTaskEditCmd(a *app) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit [task]",
		Short: "Change the title or description of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("desc") {
				patch.Description = &description
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change; pass --title and/or --desc")
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			updated, err := b.UpdateTask(cmd.Context(), task.ID, patch)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated: %q\n", updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "New description")
	return cmd
}

func newTaskDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [task]",
		Aliases: []string{"rm"},
		Short:   "Delete a task and its images",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			ok, err := a.mustConfirm(cmd, yes, fmt.Sprintf("About to delete: %q (ID: %s). Are you sure?", task.Title, shortID(task.ID)))
			if err != nil || !ok {
				return err
			}

			if err := b.DeleteTask(cmd.Context(), task.ID); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted: %q\n", task.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
