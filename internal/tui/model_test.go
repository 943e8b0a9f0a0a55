package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
)

func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	database, err := db.OpenPath(context.Background(), filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return board.New(database)
}

// start builds a model and applies its first load
func start(t *testing.T, b *board.Board) Model {
	t.Helper()
	m := NewModel(context.Background(), b)
	t.Cleanup(m.Close)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return send(t, m, m.load()())
}

// send applies msg and follows any board reads or writes it triggers
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case loadedMsg, doneMsg:
		default:
			return m
		}
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = send(t, m, msg)
	}
	return m
}

func titles(t *testing.T, b *board.Board, projectID string, status model.Status) []string {
	t.Helper()
	tasks, err := b.ListColumn(context.Background(), projectID, status)
	require.NoError(t, err)
	out := []string{}
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func seed(t *testing.T, b *board.Board, name string, todo ...string) model.Project {
	t.Helper()
	ctx := context.Background()
	p, err := b.CreateProject(ctx, name)
	require.NoError(t, err)
	for _, title := range todo {
		_, err := b.CreateTask(ctx, p.ID, model.StatusTodo, title, "")
		require.NoError(t, err)
	}
	return p
}

func Test_Load_Shows_Columns(t *testing.T) {
	b := newTestBoard(t)
	seed(t, b, "Work", "first", "second")

	m := start(t, b)
	require.Len(t, m.projects, 1)
	require.Len(t, m.columns, 3)

	view := m.View()
	require.Contains(t, view, "To Do (2)")
	require.Contains(t, view, "In Progress (0)")
	require.Contains(t, view, "first")
}

func Test_Move_Card_Across_Columns_Follows_Cursor(t *testing.T) {
	b := newTestBoard(t)
	p := seed(t, b, "Work", "a", "b", "c")

	m := start(t, b)
	m = press(t, m, "j", "L")

	require.Equal(t, []string{"a", "c"}, titles(t, b, p.ID, model.StatusTodo))
	require.Equal(t, []string{"b"}, titles(t, b, p.ID, model.StatusInProgress))
	require.Equal(t, 1, m.col)
	require.Equal(t, 0, m.row)
	require.Equal(t, "b", m.currentTask().Title)
	require.Contains(t, m.message, "In Progress")

	m = press(t, m, "H")
	require.Equal(t, []string{"b", "a", "c"}, titles(t, b, p.ID, model.StatusTodo))
	require.Empty(t, titles(t, b, p.ID, model.StatusInProgress))
	require.Equal(t, 0, m.col)
	require.Equal(t, 0, m.row)
}

func Test_Move_Card_Within_Column(t *testing.T) {
	b := newTestBoard(t)
	p := seed(t, b, "Work", "a", "b", "c")

	m := start(t, b)
	m = press(t, m, "J", "J")
	require.Equal(t, []string{"b", "c", "a"}, titles(t, b, p.ID, model.StatusTodo))
	require.Equal(t, 2, m.row)

	// already at the bottom
	m = press(t, m, "J")
	require.Equal(t, []string{"b", "c", "a"}, titles(t, b, p.ID, model.StatusTodo))

	m = press(t, m, "K")
	require.Equal(t, []string{"b", "a", "c"}, titles(t, b, p.ID, model.StatusTodo))
	require.Equal(t, 1, m.row)
}

func Test_Add_Edit_And_Complete_Task(t *testing.T) {
	b := newTestBoard(t)
	p := seed(t, b, "Work", "a")

	m := start(t, b)
	m = press(t, m, "a")
	require.Equal(t, ModeAddTask, m.mode)
	require.Contains(t, m.View(), "Add task to To Do")

	m = press(t, m, "write tests", "enter")
	require.Equal(t, ModeNormal, m.mode)
	require.Equal(t, []string{"a", "write tests"}, titles(t, b, p.ID, model.StatusTodo))
	require.Equal(t, 1, m.row)

	m = press(t, m, "e", " now", "enter")
	require.Equal(t, []string{"a", "write tests now"}, titles(t, b, p.ID, model.StatusTodo))

	m = press(t, m, "x")
	require.Equal(t, []string{"write tests now"}, titles(t, b, p.ID, model.StatusDone))
	require.Equal(t, 2, m.col)

	// esc leaves the board untouched
	m = press(t, m, "a", "discarded", "esc")
	require.Equal(t, ModeNormal, m.mode)
	require.Len(t, titles(t, b, p.ID, model.StatusDone), 1)
}

func Test_Delete_Task_Asks_First(t *testing.T) {
	b := newTestBoard(t)
	p := seed(t, b, "Work", "a", "b")

	m := start(t, b)
	m = press(t, m, "d")
	require.Equal(t, ModeConfirmDelete, m.mode)
	require.Contains(t, m.View(), `Delete "a"?`)

	m = press(t, m, "n")
	require.Equal(t, "Cancelled", m.message)
	require.Equal(t, []string{"a", "b"}, titles(t, b, p.ID, model.StatusTodo))

	m = press(t, m, "d", "y")
	require.Equal(t, []string{"b"}, titles(t, b, p.ID, model.StatusTodo))
	require.Equal(t, "b", m.currentTask().Title)
}

func Test_Project_Pane(t *testing.T) {
	b := newTestBoard(t)
	ctx := context.Background()
	seed(t, b, "Work", "a")

	m := start(t, b)
	m = press(t, m, "p", "Home", "enter")
	require.Len(t, m.projects, 2)
	require.Equal(t, "Home", m.currentProject().Name)
	require.Empty(t, m.currentColumn().Tasks)

	m = press(t, m, "tab", "K")
	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, "Home", projects[0].Name)
	require.Equal(t, 0, m.projCursor)

	m = press(t, m, "j")
	require.Equal(t, "Work", m.currentProject().Name)
	require.Len(t, m.currentColumn().Tasks, 1)

	m = press(t, m, "r", "esc")
	require.Equal(t, ModeNormal, m.mode)
	m = press(t, m, "d", "y")
	projects, err = b.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Home", m.currentProject().Name)
}

func Test_Add_Without_Project(t *testing.T) {
	b := newTestBoard(t)

	m := start(t, b)
	require.Contains(t, m.View(), "Press p to create a project")

	m = press(t, m, "a")
	require.Equal(t, ModeNormal, m.mode)
	require.True(t, m.failed)
}

func Test_Changes_From_Other_Writers_Reload(t *testing.T) {
	b := newTestBoard(t)
	p := seed(t, b, "Work")

	m := start(t, b)
	_, err := b.CreateTask(context.Background(), p.ID, model.StatusDone, "external", "")
	require.NoError(t, err)

	msg := m.waitForChange()()
	require.IsType(t, changeMsg{}, msg)

	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd)
	m = send(t, m, m.load()())
	require.Len(t, m.columns[2].Tasks, 1)
}
