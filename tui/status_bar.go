// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing refresh staleness.
// ABOUTME: Displays the view label, the automatic-refresh countdown, and the key hints of the active view.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusBarModel displays the countdown and hints in a single line.
type StatusBarModel struct {
	label     string
	countdown string
	hints     string
	width     int
}

// NewStatusBarModel creates a new StatusBarModel for the given view label and key hints.
func NewStatusBarModel(label, hints string) StatusBarModel {
	return StatusBarModel{
		label: label,
		hints: hints,
	}
}

// SetCountdown replaces the countdown text.
func (m *StatusBarModel) SetCountdown(text string) {
	m.countdown = text
}

// Countdown returns the last countdown text written.
func (m StatusBarModel) Countdown() string {
	return m.countdown
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	content := fmt.Sprintf("%s | %s", m.label, m.countdown)
	if m.hints != "" {
		content += "  " + HintStyle.Render(m.hints)
	}

	style := StatusBarStyle.Width(m.width)

	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
