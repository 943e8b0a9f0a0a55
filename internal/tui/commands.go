package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
)

// bottom asks the board to clamp a position to the end of the column
const bottom = 1 << 30

// loadedMsg carries a fresh read of the project list and the selected board
type loadedMsg struct {
	projects []model.Project
	index    int
	columns  []board.Column
	err      error
}

// doneMsg reports the outcome of a mutation
type doneMsg struct {
	message      string
	focusProject string
	focusTask    string
	err          error
}

// changeMsg is a change published by any writer of the board
type changeMsg notify.Change

// load reads the projects and the columns of the selected project
func (m Model) load() tea.Cmd {
	ctx, b := m.ctx, m.board
	want := m.focusProject
	if want == "" {
		if p := m.currentProject(); p != nil {
			want = p.ID
		}
	}
	fallback := m.projCursor

	return func() tea.Msg {
		projects, err := b.ListProjects(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}

		msg := loadedMsg{projects: projects, index: -1}
		for i, p := range projects {
			if p.ID == want {
				msg.index = i
				break
			}
		}
		if msg.index < 0 && len(projects) > 0 {
			msg.index = min(max(fallback, 0), len(projects)-1)
		}
		if msg.index >= 0 {
			msg.columns, msg.err = b.Columns(ctx, projects[msg.index].ID)
		}
		return msg
	}
}

// waitForChange blocks until the board publishes a change
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg(c)
	}
}

// do runs a mutation against the board off the UI goroutine
func (m Model) do(fn func(ctx context.Context, b *board.Board) (doneMsg, error)) tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		msg, err := fn(ctx, b)
		msg.err = err
		return msg
	}
}

func (m Model) createTask(projectID string, status model.Status, title string) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		task, err := b.CreateTask(ctx, projectID, status, title, "")
		return doneMsg{message: fmt.Sprintf("Added %q", task.Title), focusTask: task.ID}, err
	})
}

func (m Model) renameTask(taskID, title string) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		task, err := b.UpdateTask(ctx, taskID, model.TaskPatch{Title: &title})
		return doneMsg{message: fmt.Sprintf("Updated %q", task.Title), focusTask: taskID}, err
	})
}

func (m Model) moveTask(taskID string, status model.Status, position int) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		task, err := b.MoveTask(ctx, taskID, status, position)
		return doneMsg{message: fmt.Sprintf("Moved %q to %s", task.Title, task.Status.Label()), focusTask: taskID}, err
	})
}

func (m Model) deleteTask(task model.Task) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		return doneMsg{message: fmt.Sprintf("Deleted %q", task.Title)}, b.DeleteTask(ctx, task.ID)
	})
}

func (m Model) createProject(name string) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		p, err := b.CreateProject(ctx, name)
		return doneMsg{message: fmt.Sprintf("Created project %q", p.Name), focusProject: p.ID}, err
	})
}

func (m Model) renameProject(projectID, name string) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		p, err := b.UpdateProject(ctx, projectID, model.ProjectPatch{Name: &name})
		return doneMsg{message: fmt.Sprintf("Renamed project to %q", p.Name), focusProject: projectID}, err
	})
}

func (m Model) moveProject(projectID string, position int) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		p, err := b.MoveProject(ctx, projectID, position)
		return doneMsg{message: fmt.Sprintf("Moved project %q", p.Name), focusProject: projectID}, err
	})
}

func (m Model) deleteProjectCmd(p model.Project) tea.Cmd {
	return m.do(func(ctx context.Context, b *board.Board) (doneMsg, error) {
		return doneMsg{message: fmt.Sprintf("Deleted project %q", p.Name)}, b.DeleteProject(ctx, p.ID)
	})
}
