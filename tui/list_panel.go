// ABOUTME: Implements a titled, scrollable list panel using the bubbles viewport component.
// ABOUTME: Content is always replaced as a whole; an optional selection marker highlights one line.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// noSelection disables the selection marker.
const noSelection = -1

// ListPanelModel renders one list of the dashboard (fleet, neighbors, addresses, ...).
type ListPanelModel struct {
	title    string
	lines    []string
	selected int
	viewport viewport.Model
	width    int
	height   int
}

// NewListPanelModel creates an empty list panel with the given title.
func NewListPanelModel(title string) ListPanelModel {
	m := ListPanelModel{
		title:    title,
		selected: noSelection,
		viewport: viewport.New(36, 6),
	}
	m.SetSize(40, 10)
	return m
}

// SetLines replaces the panel content. The previous lines are discarded.
func (m *ListPanelModel) SetLines(lines []string) {
	m.lines = append([]string(nil), lines...)
	if m.selected >= len(m.lines) {
		m.selected = len(m.lines) - 1
	}
	m.syncViewport()
}

// Lines returns a copy of the current content.
func (m ListPanelModel) Lines() []string {
	return append([]string(nil), m.lines...)
}

// Len returns the number of lines in the panel.
func (m ListPanelModel) Len() int {
	return len(m.lines)
}

// Select moves the selection marker; out-of-range indexes are clamped and
// noSelection turns the marker off.
func (m *ListPanelModel) Select(i int) {
	switch {
	case i == noSelection || len(m.lines) == 0:
		m.selected = noSelection
	case i < 0:
		m.selected = 0
	case i >= len(m.lines):
		m.selected = len(m.lines) - 1
	default:
		m.selected = i
	}
	m.syncViewport()
}

// Selected returns the selected index or -1.
func (m ListPanelModel) Selected() int {
	return m.selected
}

// SetSize sets the available dimensions and updates the viewport.
func (m *ListPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.syncViewport()
}

// View renders the panel.
func (m ListPanelModel) View() string {
	var content string
	if len(m.lines) == 0 {
		content = EmptyStyle.Render("(empty)")
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render(m.title) + "\n" + content

	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

// syncViewport rebuilds the viewport content and keeps the selection visible.
func (m *ListPanelModel) syncViewport() {
	if len(m.lines) == 0 {
		m.viewport.SetContent("")
		return
	}
	rows := make([]string, 0, len(m.lines))
	for i, line := range m.lines {
		if i == m.selected {
			rows = append(rows, SelectedStyle.Render("> "+line))
			continue
		}
		if m.selected != noSelection {
			line = "  " + line
		}
		rows = append(rows, EntryStyle.Render(line))
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))

	if m.selected == noSelection {
		return
	}
	if m.selected < m.viewport.YOffset {
		m.viewport.SetYOffset(m.selected)
	} else if m.selected >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.selected - m.viewport.Height + 1)
	}
}
