package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/config"
	"github.com/existflow/kissboard/internal/model"
)

func newContextCmd(a *app) *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Manage project context",
		Long: `Set or view the current project context.

When a context is set, task commands use that project by default.
Without one they use the first project in the list.

Examples:
  kissboard context              # Show current context
  kissboard context ls           # List all projects
  kissboard context set work     # Set context to the 'work' project
  kissboard context clear        # Clear context`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContextShow(cmd, a)
		},
	}

	contextCmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContextList(cmd, a)
		},
	})
	contextCmd.AddCommand(&cobra.Command{
		Use:   "set [project]",
		Short: "Set the current project context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContextSet(cmd, a, args[0])
		},
	})
	contextCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ClearContext(); err != nil {
				return fmt.Errorf("failed to clear context: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "📥 Context cleared")
			return nil
		},
	})

	return contextCmd
}

// Context file path, next to the config file
func contextFilePath() string {
	return filepath.Join(filepath.Dir(config.Path()), "context")
}

// GetCurrentContext returns the current project id (empty means none)
func GetCurrentContext() string {
	data, err := os.ReadFile(contextFilePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetContext saves the current context
func SetContext(projectID string) error {
	path := contextFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return atomic.WriteFile(path, strings.NewReader(projectID))
}

// ClearContext removes the context file
func ClearContext() error {
	if err := os.Remove(contextFilePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var errNoProjects = errors.New("no projects yet; create one with 'kissboard project new <name>'")

// currentProject picks the project a task command works on: ref when given,
// then the saved context, then the first project.
func currentProject(ctx context.Context, b *board.Board, ref string) (model.Project, error) {
	if ref != "" {
		return b.ResolveProject(ctx, ref)
	}
	if id := GetCurrentContext(); id != "" {
		p, err := b.GetProject(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, board.ErrNotFound) {
			return model.Project{}, err
		}
	}

	projects, err := b.ListProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	if len(projects) == 0 {
		return model.Project{}, errNoProjects
	}
	return projects[0], nil
}

func runContextShow(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	id := GetCurrentContext()
	if id == "" {
		fmt.Fprintln(out, "📥 No context set (using the first project)")
		return nil
	}

	b, err := a.open(cmd.Context())
	if err != nil {
		return err
	}

	project, err := b.GetProject(cmd.Context(), id)
	if err != nil {
		fmt.Fprintf(out, "⚠️  Context set to '%s' but project not found\n", id)
		return nil
	}

	count, _ := b.CountTasks(cmd.Context(), id)
	fmt.Fprintf(out, "📁 Current context: %s (%d tasks)\n", project.Name, count)
	return nil
}

func runContextList(cmd *cobra.Command, a *app) error {
	b, err := a.open(cmd.Context())
	if err != nil {
		return err
	}

	projects, err := b.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	current, err := currentProject(cmd.Context(), b, "")
	if err != nil && !errors.Is(err, errNoProjects) {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, p := range projects {
		count, _ := b.CountTasks(cmd.Context(), p.ID)
		marker := "  "
		if p.ID == current.ID {
			marker = "❯ "
		}
		fmt.Fprintf(out, "%s%-10s  %-20s  %d\n", marker, shortID(p.ID), p.Name, count)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'kissboard context set <project>' to switch context")

	return nil
}

func runContextSet(cmd *cobra.Command, a *app, ref string) error {
	b, err := a.open(cmd.Context())
	if err != nil {
		return err
	}

	project, err := b.ResolveProject(cmd.Context(), ref)
	if err != nil {
		return err
	}

	if err := SetContext(project.ID); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "📁 Switched to: %s\n", project.Name)
	return nil
}
