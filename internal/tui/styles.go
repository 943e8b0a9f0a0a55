package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/kissboard/internal/model"
)

// Color palette
var (
	// Column colors
	ColumnTodo     = lipgloss.Color("#4ECDC4") // Blue
	ColumnProgress = lipgloss.Color("#FFB347") // Orange
	ColumnDone     = lipgloss.Color("#95E1A3") // Green

	ErrorColor = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

const sidebarWidth = 24

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	ProjectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	ProjectItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Columns
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ColumnFocusedStyle = ColumnStyle.
				BorderForeground(Primary)

	// Cards
	CardStyle = lipgloss.NewStyle()

	CardSelectedStyle = lipgloss.NewStyle().
				Background(Surface).
				Foreground(Text).
				Bold(true)

	CardDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// columnColor returns the heading color of a column
func columnColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusInProgress:
		return ColumnProgress
	case model.StatusDone:
		return ColumnDone
	default:
		return ColumnTodo
	}
}
