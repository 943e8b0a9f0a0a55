package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/kissboard/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var main string
	switch m.mode {
	case ModeHelp:
		main = m.renderHelp()
	case ModeAddTask, ModeEditTask, ModeAddProject, ModeRenameProject, ModeConfirmDelete:
		main = lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, m.renderModal())
	default:
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderBoard())
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("📋 KissBoard"))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		b.WriteString(EmptyStyle.Render("No projects"))
	}
	for i, p := range m.projects {
		name := truncate(p.Name, sidebarWidth-6)
		if i == m.projCursor {
			style := ProjectItemSelectedStyle
			if m.pane == PaneProjects {
				style = style.Foreground(Primary)
			}
			b.WriteString(style.Render("❯ " + name))
		} else {
			b.WriteString(ProjectItemStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}

	return SidebarStyle.Height(max(m.height-4, 1)).Render(b.String())
}

func (m Model) renderBoard() string {
	if m.currentProject() == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(EmptyStyle.Render("Press p to create a project"))
	}

	avail := m.width - sidebarWidth - 4
	colWidth := max(avail/len(model.Statuses)-4, 12)

	cols := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		var b strings.Builder

		heading := fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Tasks))
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(columnColor(col.Status)).Render(heading))
		b.WriteString("\n\n")

		if len(col.Tasks) == 0 {
			b.WriteString(EmptyStyle.Render("empty"))
		}
		for r, t := range col.Tasks {
			title := truncate(t.Title, colWidth-2)
			selected := m.pane == PaneBoard && i == m.col && r == m.row
			switch {
			case selected:
				b.WriteString(CardSelectedStyle.Render("❯ " + title))
			case t.Status == model.StatusDone:
				b.WriteString("  " + CardDoneStyle.Render(title))
			default:
				b.WriteString(CardStyle.Render("  " + title))
			}
			b.WriteString("\n")
		}

		style := ColumnStyle
		if m.pane == PaneBoard && i == m.col {
			style = ColumnFocusedStyle
		}
		cols = append(cols, style.Width(colWidth).Height(max(m.height-6, 1)).Render(b.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderStatusBar() string {
	left := m.help.View(keys)
	if m.message != "" {
		left = m.message
		if m.failed {
			left = ErrorStyle.Render(left)
		}
	}

	if p := m.currentProject(); p != nil {
		total := 0
		for _, col := range m.columns {
			total += len(col.Tasks)
		}
		right := fmt.Sprintf("%s · %d tasks", p.Name, total)
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if gap > 0 {
			left += strings.Repeat(" ", gap) + right
		}
	}

	return StatusBarStyle.Width(m.width).Render(left)
}

func (m Model) renderModal() string {
	var title string
	switch m.mode {
	case ModeAddTask:
		title = fmt.Sprintf("Add task to %s", m.currentStatus().Label())
	case ModeEditTask:
		title = "Edit task"
	case ModeAddProject:
		title = "New project"
	case ModeRenameProject:
		title = "Rename project"
	case ModeConfirmDelete:
		return ModalStyle.Render(m.confirmText() + "\n\n" + HelpStyle.Render("y: delete • any other key: cancel"))
	}

	content := HeaderStyle.Render(title) + "\n\n" + m.input.View() + "\n\n" +
		HelpStyle.Render("enter: save • esc: cancel")
	return ModalStyle.Render(content)
}

func (m Model) confirmText() string {
	if m.deleteProject {
		if p := m.currentProject(); p != nil {
			return fmt.Sprintf("Delete project %q and all of its tasks?", p.Name)
		}
	}
	if t := m.currentTask(); t != nil {
		return fmt.Sprintf("Delete %q?", t.Title)
	}
	return "Delete?"
}

func (m Model) renderHelp() string {
	content := HeaderStyle.Render("Keyboard shortcuts") + "\n\n" +
		m.help.FullHelpView(keys.FullHelp()) + "\n\n" +
		HelpStyle.Render("Press any key to close")
	return lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, ModalStyle.Render(content))
}
