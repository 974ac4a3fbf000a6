// ABOUTME: Top-level Bubble Tea AppModel that hosts either the fleet view or one node view.
// ABOUTME: Navigation always builds a fresh view instance, so work issued by the previous view is abandoned.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode indicates which view the app is showing.
type Mode int

const (
	ModeFleet Mode = iota
	ModeNode
)

// Options configure the views created by the app shell.
type Options struct {
	// Period is the number of one-second ticks between automatic refreshes.
	Period int
}

// AppModel is the top-level Bubble Tea model. It routes messages to the
// active view and performs navigation between views.
type AppModel struct {
	ctx     context.Context
	backend Backend
	opts    Options

	mode  Mode
	fleet FleetModel
	node  NodeModel

	width  int
	height int
}

// NewAppModel creates the app shell. An empty startLink opens the fleet view;
// otherwise the node view for the link's name query parameter is opened.
func NewAppModel(ctx context.Context, backend Backend, opts Options, startLink string) AppModel {
	m := AppModel{
		ctx:     ctx,
		backend: backend,
		opts:    opts,
	}
	if startLink == "" {
		m.mode = ModeFleet
		m.fleet = NewFleetModel(ctx, backend, opts.Period)
	} else {
		m.mode = ModeNode
		m.node = NewNodeModel(ctx, backend, NodeNameFromLink(startLink), opts.Period)
	}
	return m
}

// Mode returns the active view.
func (m AppModel) Mode() Mode {
	return m.mode
}

// Fleet returns the fleet view. Only meaningful in ModeFleet.
func (m AppModel) Fleet() FleetModel {
	return m.fleet
}

// Node returns the node view. Only meaningful in ModeNode.
func (m AppModel) Node() NodeModel {
	return m.node
}

// Init implements tea.Model. Starts the active view.
func (m AppModel) Init() tea.Cmd {
	if m.mode == ModeNode {
		return m.node.Init()
	}
	return m.fleet.Init()
}

// Update implements tea.Model. Handles navigation and global keys, and
// forwards everything else to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case OpenNodeMsg:
		return m.openNode(msg.Link)

	case BackToFleetMsg:
		return m.openFleet()
	}

	var cmd tea.Cmd
	if m.mode == ModeNode {
		m.node, cmd = m.node.Update(msg)
	} else {
		m.fleet, cmd = m.fleet.Update(msg)
	}
	return m, cmd
}

// openNode replaces the active view with a new node view for link.
func (m AppModel) openNode(link string) (tea.Model, tea.Cmd) {
	m.mode = ModeNode
	m.node = NewNodeModel(m.ctx, m.backend, NodeNameFromLink(link), m.opts.Period)
	m.fleet = FleetModel{}
	m.node.SetSize(m.width, m.height)
	return m, m.node.Init()
}

// openFleet replaces the active view with a new fleet view.
func (m AppModel) openFleet() (tea.Model, tea.Cmd) {
	m.mode = ModeFleet
	m.fleet = NewFleetModel(m.ctx, m.backend, m.opts.Period)
	m.node = NodeModel{}
	m.fleet.SetSize(m.width, m.height)
	return m, m.fleet.Init()
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 40 || m.height < 16 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x16.", m.width, m.height)
	}

	if m.mode == ModeNode {
		return m.node.View()
	}
	return m.fleet.View()
}
