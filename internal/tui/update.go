package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.applyLoad(msg)
		return m, nil

	case doneMsg:
		if msg.err != nil {
			logger.Warn("Board operation failed", logger.F("error", msg.err))
			m.message, m.failed = "Error: "+msg.err.Error(), true
		} else {
			m.message, m.failed = msg.message, false
		}
		if msg.focusProject != "" {
			m.focusProject = msg.focusProject
		}
		if msg.focusTask != "" {
			m.focusTask = msg.focusTask
		}
		return m, m.load()

	case changeMsg:
		logger.Debug("Board changed", logger.F("revision", msg.Revision), logger.F("kind", msg.Kind))
		return m, tea.Batch(m.load(), m.waitForChange())

	case tea.KeyMsg:
		switch m.mode {
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeAddTask, ModeEditTask, ModeAddProject, ModeRenameProject:
			return m.updateInput(msg)
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m *Model) applyLoad(msg loadedMsg) {
	if msg.err != nil {
		logger.Warn("Failed to load board", logger.F("error", msg.err))
		m.message, m.failed = "Error: "+msg.err.Error(), true
		return
	}

	m.projects = msg.projects
	m.columns = msg.columns
	m.projCursor = max(msg.index, 0)
	m.focusProject = ""

	if m.focusTask != "" {
		for c, col := range m.columns {
			for r, t := range col.Tasks {
				if t.ID == m.focusTask {
					m.col, m.row = c, r
				}
			}
		}
		m.focusTask = ""
	}
	m.clampRow()
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneBoard {
			m.pane = PaneProjects
		} else {
			m.pane = PaneBoard
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.load()

	case key.Matches(msg, keys.Project):
		return m.startInput(ModeAddProject, "", "Project name...")

	case key.Matches(msg, keys.Rename):
		if p := m.currentProject(); p != nil {
			return m.startInput(ModeRenameProject, p.Name, "Project name...")
		}
		return m, nil

	case key.Matches(msg, keys.Add):
		if m.currentProject() == nil {
			m.message, m.failed = "Create a project first (p)", true
			return m, nil
		}
		return m.startInput(ModeAddTask, "", "Task title...")
	}

	if m.pane == PaneProjects {
		return m.handleProjectKeys(msg)
	}
	return m.handleBoardKeys(msg)
}

func (m Model) handleProjectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.currentProject()
	if p == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.projCursor > 0 {
			return m.selectProject(m.projCursor - 1)
		}

	case key.Matches(msg, keys.Down):
		if m.projCursor < len(m.projects)-1 {
			return m.selectProject(m.projCursor + 1)
		}

	case key.Matches(msg, keys.MoveUp):
		if m.projCursor > 0 {
			return m, m.moveProject(p.ID, m.projCursor-1)
		}

	case key.Matches(msg, keys.MoveDown):
		if m.projCursor < len(m.projects)-1 {
			return m, m.moveProject(p.ID, m.projCursor+1)
		}

	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Right):
		m.pane = PaneBoard

	case key.Matches(msg, keys.Delete):
		m.mode = ModeConfirmDelete
		m.deleteProject = true
	}

	return m, nil
}

func (m Model) selectProject(i int) (tea.Model, tea.Cmd) {
	m.projCursor = i
	m.focusProject = m.projects[i].ID
	m.col, m.row = 0, 0
	return m, m.load()
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.row > 0 {
			m.row--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if col := m.currentColumn(); col != nil && m.row < len(col.Tasks)-1 {
			m.row++
		}
		return m, nil

	case key.Matches(msg, keys.Left):
		if m.col > 0 {
			m.col--
			m.clampRow()
		}
		return m, nil

	case key.Matches(msg, keys.Right):
		if m.col < len(model.Statuses)-1 {
			m.col++
			m.clampRow()
		}
		return m, nil
	}

	t := m.currentTask()
	if t == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.MoveUp):
		if m.row > 0 {
			return m, m.moveTask(t.ID, t.Status, m.row-1)
		}

	case key.Matches(msg, keys.MoveDown):
		if m.row < len(m.currentColumn().Tasks)-1 {
			return m, m.moveTask(t.ID, t.Status, m.row+1)
		}

	case key.Matches(msg, keys.MoveLeft):
		if m.col > 0 {
			return m, m.moveTask(t.ID, model.Statuses[m.col-1], m.row)
		}

	case key.Matches(msg, keys.MoveRight):
		if m.col < len(model.Statuses)-1 {
			return m, m.moveTask(t.ID, model.Statuses[m.col+1], m.row)
		}

	case key.Matches(msg, keys.Done):
		if t.Status != model.StatusDone {
			return m, m.moveTask(t.ID, model.StatusDone, bottom)
		}

	case key.Matches(msg, keys.Edit):
		return m.startInput(ModeEditTask, t.Title, "Task title...")

	case key.Matches(msg, keys.Delete):
		m.mode = ModeConfirmDelete
		m.deleteProject = false
	}

	return m, nil
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		m.input.SetValue("")
		if value == "" {
			return m, nil
		}
		return m, m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(mode Mode, value string) tea.Cmd {
	switch mode {
	case ModeAddTask:
		if p := m.currentProject(); p != nil {
			return m.createTask(p.ID, m.currentStatus(), value)
		}
	case ModeEditTask:
		if t := m.currentTask(); t != nil {
			return m.renameTask(t.ID, value)
		}
	case ModeAddProject:
		return m.createProject(value)
	case ModeRenameProject:
		if p := m.currentProject(); p != nil {
			return m.renameProject(p.ID, value)
		}
	}
	return nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y":
	default:
		m.message, m.failed = "Cancelled", false
		return m, nil
	}

	if m.deleteProject {
		if p := m.currentProject(); p != nil {
			m.projCursor = max(m.projCursor-1, 0)
			return m, m.deleteProjectCmd(*p)
		}
		return m, nil
	}
	if t := m.currentTask(); t != nil {
		return m, m.deleteTask(*t)
	}
	return m, nil
}
