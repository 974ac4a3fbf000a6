// ABOUTME: FormModel groups labelled bubbles text inputs with a single focus cursor.
// ABOUTME: Used for the fleet registration inputs and the node command inputs.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// noFocus means no input of the form has keyboard focus.
const noFocus = -1

// FieldSpec describes one input of a form.
type FieldSpec struct {
	Label       string
	Placeholder string
}

// FormModel is an ordered set of text inputs. At most one input is focused.
type FormModel struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

// NewFormModel creates a form with the given fields, none focused.
func NewFormModel(fields ...FieldSpec) FormModel {
	m := FormModel{focus: noFocus}
	for _, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = f.Placeholder
		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Len returns the number of inputs.
func (m FormModel) Len() int {
	return len(m.inputs)
}

// Focused returns the index of the focused input or -1.
func (m FormModel) Focused() int {
	return m.focus
}

// FocusIndex moves keyboard focus to input i. Out-of-range indexes blur the form.
func (m *FormModel) FocusIndex(i int) {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	if i < 0 || i >= len(m.inputs) {
		m.focus = noFocus
		return
	}
	m.focus = i
	m.inputs[i].Focus()
}

// Blur removes focus from every input.
func (m *FormModel) Blur() {
	m.FocusIndex(noFocus)
}

// Value returns the current text of input i.
func (m FormModel) Value(i int) string {
	if i < 0 || i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}

// SetValue replaces the text of input i.
func (m *FormModel) SetValue(i int, v string) {
	if i < 0 || i >= len(m.inputs) {
		return
	}
	m.inputs[i].SetValue(v)
}

// Update forwards a message to the focused input.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if m.focus == noFocus {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders one "label input" row per field.
func (m FormModel) View() string {
	rows := make([]string, 0, len(m.inputs))
	for i, in := range m.inputs {
		label := LabelStyle.Render(m.labels[i])
		if i == m.focus {
			label = FocusedLabelStyle.Render(m.labels[i])
		}
		rows = append(rows, label+in.View())
	}
	return FormStyle.Render(strings.Join(rows, "\n"))
}
