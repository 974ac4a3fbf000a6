// ABOUTME: Defines lipgloss style constants for the dashboard panels, forms, selection, and status bar.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// List entries
	EntryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	LinkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	EmptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	HintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Form labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)
	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true).
				Width(12)

	// Form box
	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)
