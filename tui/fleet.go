// ABOUTME: FleetModel is the fleet overview: the node list, the registration form, and the refresh countdown.
// ABOUTME: Fetches run as tea.Cmds tagged with this view's instance ID; results from other instances are dropped.
package tui

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/refresh"
	"github.com/2389-research/natdash/render"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// FleetFocus indicates which part of the fleet view has keyboard focus.
type FleetFocus int

const (
	FocusFleetList FleetFocus = iota
	FocusFleetName
	FocusFleetPort
	fleetFocusCount
)

// Registration form field indexes.
const (
	fieldName = iota
	fieldPort
)

const fleetHints = "tab focus  enter open/register  ctrl+r refresh  ctrl+c quit"

// tickInterval is the host clock period driving the refresh timer.
const tickInterval = time.Second

// FleetModel lists every registered node and registers new ones.
type FleetModel struct {
	id      string
	ctx     context.Context
	backend Backend

	timer   refresh.Timer
	entries []render.FleetEntry

	list   ListPanelModel
	form   FormModel
	status StatusBarModel
	focus  FleetFocus

	width  int
	height int
}

// NewFleetModel creates a fleet view instance with its own timer and ID.
func NewFleetModel(ctx context.Context, backend Backend, period int) FleetModel {
	timer := refresh.NewTimer(period)
	m := FleetModel{
		id:      uuid.NewString(),
		ctx:     ctx,
		backend: backend,
		timer:   timer,
		list:    NewListPanelModel("Nodes"),
		form: NewFormModel(
			FieldSpec{Label: "Name", Placeholder: "letters and digits"},
			FieldSpec{Label: "Port", Placeholder: "9000"},
		),
		status: NewStatusBarModel("Fleet", fleetHints),
		focus:  FocusFleetList,
	}
	m.status.SetCountdown(timer.Countdown())
	return m
}

// ID returns the view instance ID stamped on every message this view issues.
func (m FleetModel) ID() string {
	return m.id
}

// Timer returns a copy of the refresh timer state.
func (m FleetModel) Timer() refresh.Timer {
	return m.timer
}

// Entries returns the rendered fleet list.
func (m FleetModel) Entries() []render.FleetEntry {
	return append([]render.FleetEntry(nil), m.entries...)
}

// Focus returns the current focus target.
func (m FleetModel) Focus() FleetFocus {
	return m.focus
}

// Init fetches the fleet and starts the tick loop.
func (m FleetModel) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), TickCmd(m.id, tickInterval))
}

// Refresh issues GET /api/nodes/.
func (m FleetModel) Refresh() tea.Cmd {
	return ListNodesCmd(m.ctx, m.backend, m.id)
}

// ForceRefresh fetches immediately and restarts the countdown.
func (m FleetModel) ForceRefresh() (FleetModel, tea.Cmd) {
	cmd := m.Refresh()
	restartCountdown(&m.timer, &m.status)
	return m, cmd
}

// Register checks the name locally and, when legal, posts the registration
// and re-lists the fleet without waiting for the post. An illegal name is
// logged and nothing is sent.
func (m FleetModel) Register(name, portInput string) tea.Cmd {
	if err := api.CheckName(name); err != nil {
		log.Printf("component=tui.fleet action=register_rejected reason=%q", err.Error())
		return nil
	}
	req := api.RegisterRequest{Name: name, Port: api.ParsePort(portInput)}
	return tea.Batch(
		RegisterCmd(m.ctx, m.backend, m.id, req),
		m.Refresh(),
	)
}

// Update handles ticks, fetch results, and keys for this view.
func (m FleetModel) Update(msg tea.Msg) (FleetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.View != m.id {
			return m, nil
		}
		cmd := tickCountdown(&m.timer, &m.status, m.Refresh(), TickCmd(m.id, tickInterval))
		return m, cmd

	case FleetLoadedMsg:
		if msg.View != m.id {
			return m, nil
		}
		if msg.Err != nil {
			log.Printf("component=tui.fleet action=list_failed err=%v", msg.Err)
			return m, nil
		}
		m.setEntries(render.FleetEntries(msg.Names))
		return m, nil

	case RegisterDoneMsg:
		if msg.View != m.id {
			return m, nil
		}
		if msg.Err != nil {
			log.Printf("component=tui.fleet action=register_failed name=%s err=%v", msg.Name, msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes keyboard input for the list and the registration form.
func (m FleetModel) handleKey(msg tea.KeyMsg) (FleetModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		return m.ForceRefresh()
	case "tab":
		m.setFocus((m.focus + 1) % fleetFocusCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + fleetFocusCount - 1) % fleetFocusCount)
		return m, nil
	case "enter":
		if m.focus == FocusFleetList {
			sel := m.list.Selected()
			if sel < 0 || sel >= len(m.entries) {
				return m, nil
			}
			return m, OpenNodeCmd(m.entries[sel].Href)
		}
		return m, m.Register(m.form.Value(fieldName), m.form.Value(fieldPort))
	}

	if m.focus == FocusFleetList {
		switch msg.String() {
		case "up", "k":
			m.list.Select(m.list.Selected() - 1)
		case "down", "j":
			m.list.Select(m.list.Selected() + 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// setFocus moves focus between the list and the form inputs.
func (m *FleetModel) setFocus(f FleetFocus) {
	m.focus = f
	switch f {
	case FocusFleetName:
		m.form.FocusIndex(fieldName)
	case FocusFleetPort:
		m.form.FocusIndex(fieldPort)
	default:
		m.form.Blur()
	}
}

// setEntries replaces the list content with freshly rendered entries. The
// selection follows the selected node by name; when that node is gone the
// index is clamped to the new list.
func (m *FleetModel) setEntries(entries []render.FleetEntry) {
	selectedName := ""
	if sel := m.list.Selected(); sel >= 0 && sel < len(m.entries) {
		selectedName = m.entries[sel].Name
	}

	m.entries = entries
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Name+"  "+LinkStyle.Render(e.Href))
	}
	m.list.SetLines(lines)
	if selectedName != "" {
		for i, e := range entries {
			if e.Name == selectedName {
				m.list.Select(i)
				break
			}
		}
	}
	if m.list.Selected() == noSelection && len(lines) > 0 {
		m.list.Select(0)
	}
}

// SetSize lays the list out above the form and status bar.
func (m *FleetModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	listHeight := h - 6
	if listHeight < 4 {
		listHeight = 4
	}
	m.list.SetSize(w, listHeight)
	m.status.SetWidth(w)
}

// View renders the list, the registration form, and the status bar.
func (m FleetModel) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render("Register node"), m.form.View()))
	b.WriteString("\n")
	b.WriteString(m.status.View())
	return b.String()
}
