// ABOUTME: NodeModel is the detail view of one node: its panels, the three command forms, and the countdown.
// ABOUTME: Every snapshot replaces all panels at once; commands post and re-fetch without awaiting the post.
package tui

import (
	"context"
	"log"
	"strings"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/refresh"
	"github.com/2389-research/natdash/render"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Node command form field indexes.
const (
	FieldDirectAddr = iota
	FieldNatDest
	FieldChatDest
	FieldChatText
)

const nodeHints = "tab next  enter send  ctrl+l nat local  ctrl+r refresh  esc fleet  ctrl+c quit"

// NodeModel shows one node's snapshot and issues operations to it.
type NodeModel struct {
	id      string
	name    string
	ctx     context.Context
	backend Backend

	timer    refresh.Timer
	view     render.NodeView
	natLocal bool

	neighbors ListPanelModel
	addresses ListPanelModel
	routing   ListPanelModel
	chat      ListPanelModel
	form      FormModel
	status    StatusBarModel

	width  int
	height int
}

// NewNodeModel creates a detail view instance for the named node. The name is
// used as given, including "".
func NewNodeModel(ctx context.Context, backend Backend, name string, period int) NodeModel {
	timer := refresh.NewTimer(period)
	m := NodeModel{
		id:        uuid.NewString(),
		name:      name,
		ctx:       ctx,
		backend:   backend,
		timer:     timer,
		neighbors: NewListPanelModel("Neighbors"),
		addresses: NewListPanelModel("Addresses"),
		routing:   NewListPanelModel("Routing"),
		chat:      NewListPanelModel("Chat"),
		form: NewFormModel(
			FieldSpec{Label: "Direct addr", Placeholder: "host:port"},
			FieldSpec{Label: "NAT dest", Placeholder: "node"},
			FieldSpec{Label: "Chat dest", Placeholder: "node"},
			FieldSpec{Label: "Chat text", Placeholder: "message"},
		),
		status: NewStatusBarModel(render.Title(name), nodeHints),
	}
	m.form.FocusIndex(FieldDirectAddr)
	m.status.SetCountdown(timer.Countdown())
	return m
}

// ID returns the view instance ID stamped on every message this view issues.
func (m NodeModel) ID() string {
	return m.id
}

// Name returns the node this view is bound to.
func (m NodeModel) Name() string {
	return m.name
}

// Timer returns a copy of the refresh timer state.
func (m NodeModel) Timer() refresh.Timer {
	return m.timer
}

// Rendered returns the panels derived from the last successful snapshot.
func (m NodeModel) Rendered() render.NodeView {
	return m.view
}

// NatLocal reports whether nat commands carry the local flag.
func (m NodeModel) NatLocal() bool {
	return m.natLocal
}

// Init fetches the snapshot and starts the tick loop.
func (m NodeModel) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), TickCmd(m.id, tickInterval))
}

// Refresh issues GET /api/nodes/{name}.
func (m NodeModel) Refresh() tea.Cmd {
	return SnapshotCmd(m.ctx, m.backend, m.id, m.name)
}

// ForceRefresh fetches immediately and restarts the countdown.
func (m NodeModel) ForceRefresh() (NodeModel, tea.Cmd) {
	cmd := m.Refresh()
	restartCountdown(&m.timer, &m.status)
	return m, cmd
}

// IssueDirect asks the node to connect directly to addr.
func (m NodeModel) IssueDirect(addr string) tea.Cmd {
	return m.issue(api.Direct(addr))
}

// IssueNat asks the node to reach dest by hole punching.
func (m NodeModel) IssueNat(dest string, local bool) tea.Cmd {
	return m.issue(api.Nat(dest, local))
}

// IssueChat sends text to dest through the node.
func (m NodeModel) IssueChat(dest, text string) tea.Cmd {
	return m.issue(api.Chat(dest, text))
}

// issue posts the envelope and re-fetches in the same batch. Inputs are sent
// unvalidated.
func (m NodeModel) issue(env api.OperationEnvelope) tea.Cmd {
	return tea.Batch(
		SendCmd(m.ctx, m.backend, m.id, m.name, env),
		m.Refresh(),
	)
}

// Update handles ticks, fetch results, and keys for this view.
func (m NodeModel) Update(msg tea.Msg) (NodeModel, tea.Cmd) {
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

	case SnapshotMsg:
		if msg.View != m.id {
			return m, nil
		}
		if msg.Err != nil {
			log.Printf("component=tui.node action=fetch_failed node=%s err=%v", msg.Node, msg.Err)
			return m, nil
		}
		m.apply(render.Node(msg.Snapshot))
		return m, nil

	case OpDoneMsg:
		if msg.View != m.id {
			return m, nil
		}
		if msg.Err != nil {
			log.Printf("component=tui.node action=%s_failed node=%s err=%v", msg.Op, msg.Node, msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes keyboard input for the command forms.
func (m NodeModel) handleKey(msg tea.KeyMsg) (NodeModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		return m.ForceRefresh()
	case "esc":
		return m, func() tea.Msg { return BackToFleetMsg{} }
	case "ctrl+l":
		m.natLocal = !m.natLocal
		return m, nil
	case "tab":
		m.form.FocusIndex((m.form.Focused() + 1) % m.form.Len())
		return m, nil
	case "shift+tab":
		m.form.FocusIndex((m.form.Focused() + m.form.Len() - 1) % m.form.Len())
		return m, nil
	case "enter":
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// submit issues the command whose form holds the focused input.
func (m NodeModel) submit() tea.Cmd {
	switch m.form.Focused() {
	case FieldDirectAddr:
		return m.IssueDirect(m.form.Value(FieldDirectAddr))
	case FieldNatDest:
		return m.IssueNat(m.form.Value(FieldNatDest), m.natLocal)
	case FieldChatDest, FieldChatText:
		return m.IssueChat(m.form.Value(FieldChatDest), m.form.Value(FieldChatText))
	}
	return nil
}

// apply replaces every panel with the given rendering.
func (m *NodeModel) apply(v render.NodeView) {
	m.view = v
	m.neighbors.SetLines(v.Neighbors)
	m.addresses.SetLines(v.Addresses)
	m.routing.SetLines(v.Routing)
	m.chat.SetLines(v.Chat)
}

// SetSize lays the four panels out in a 2x2 grid above the forms.
func (m *NodeModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Title, local addr, form box (6), status bar
	gridHeight := h - 9
	if gridHeight < 8 {
		gridHeight = 8
	}
	half := w / 2
	if half < 10 {
		half = 10
	}
	m.neighbors.SetSize(half, gridHeight/2)
	m.addresses.SetSize(w-half, gridHeight/2)
	m.routing.SetSize(half, gridHeight-gridHeight/2)
	m.chat.SetSize(w-half, gridHeight-gridHeight/2)
	m.status.SetWidth(w)
}

// View renders the heading, the panels, the forms, and the status bar.
func (m NodeModel) View() string {
	nat := "nat local: off"
	if m.natLocal {
		nat = "nat local: on"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(render.Title(m.name)))
	b.WriteString("\n")
	b.WriteString(m.view.Local)
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.neighbors.View(), m.addresses.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.routing.View(), m.chat.View()))
	b.WriteString("\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	b.WriteString(m.status.View() + " " + HintStyle.Render(nat))
	return b.String()
}
