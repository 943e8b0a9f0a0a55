// Package tui is the interactive terminal board.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneProjects Pane = iota
	PaneBoard
)

// Mode represents the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeAddProject
	ModeRenameProject
	ModeConfirmDelete
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	ctx   context.Context
	board *board.Board

	projects []model.Project
	columns  []board.Column

	pane       Pane
	mode       Mode
	projCursor int
	col        int
	row        int

	// selection to restore once the next load arrives
	focusProject string
	focusTask    string

	deleteProject bool

	input textinput.Model
	help  help.Model

	changes     <-chan notify.Change
	unsubscribe func()

	width   int
	height  int
	message string
	failed  bool
}

// NewModel creates a TUI model reading from and writing to b
func NewModel(ctx context.Context, b *board.Board) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.Cursor.SetMode(cursor.CursorStatic)

	changes, unsubscribe := b.Changes().Subscribe(16)

	return Model{
		ctx:         ctx,
		board:       b,
		pane:        PaneBoard,
		input:       ti,
		help:        help.New(),
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Init loads the board and starts listening for changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

// Close stops listening for board changes
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, b *board.Board) error {
	m := NewModel(ctx, b)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) currentProject() *model.Project {
	if m.projCursor < 0 || m.projCursor >= len(m.projects) {
		return nil
	}
	return &m.projects[m.projCursor]
}

func (m Model) currentColumn() *board.Column {
	if m.col < 0 || m.col >= len(m.columns) {
		return nil
	}
	return &m.columns[m.col]
}

func (m Model) currentTask() *model.Task {
	col := m.currentColumn()
	if col == nil || m.row < 0 || m.row >= len(col.Tasks) {
		return nil
	}
	return &col.Tasks[m.row]
}

func (m Model) currentStatus() model.Status {
	if m.col >= 0 && m.col < len(model.Statuses) {
		return model.Statuses[m.col]
	}
	return model.StatusTodo
}

func (m *Model) clampRow() {
	n := 0
	if col := m.currentColumn(); col != nil {
		n = len(col.Tasks)
	}
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}
