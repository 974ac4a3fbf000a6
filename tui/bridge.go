// ABOUTME: Bridge between the node API and the Bubble Tea message loop.
// ABOUTME: Provides tea.Cmd factories for ticks, fleet and node fetches, registration, and operation posts.
package tui

import (
	"context"
	"net/url"
	"time"

	"github.com/2389-research/natdash/api"
	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the subset of the node API the views depend on. *api.Client
// implements it.
type Backend interface {
	ListNodes(ctx context.Context) ([]string, error)
	RegisterNode(ctx context.Context, req api.RegisterRequest) error
	Snapshot(ctx context.Context, name string) (api.NodeSnapshot, error)
	Send(ctx context.Context, name string, env api.OperationEnvelope) error
}

var _ Backend = (*api.Client)(nil)

// TickCmd returns a tea.Cmd that sends a TickMsg for the given view after interval.
func TickCmd(view string, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{View: view, Time: t}
	})
}

// ListNodesCmd fetches the fleet in the background.
func ListNodesCmd(ctx context.Context, b Backend, view string) tea.Cmd {
	return func() tea.Msg {
		names, err := b.ListNodes(ctx)
		return FleetLoadedMsg{View: view, Names: names, Err: err}
	}
}

// RegisterCmd posts a registration in the background.
func RegisterCmd(ctx context.Context, b Backend, view string, req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		err := b.RegisterNode(ctx, req)
		return RegisterDoneMsg{View: view, Name: req.Name, Err: err}
	}
}

// SnapshotCmd fetches one node's snapshot in the background.
func SnapshotCmd(ctx context.Context, b Backend, view, node string) tea.Cmd {
	return func() tea.Msg {
		snap, err := b.Snapshot(ctx, node)
		return SnapshotMsg{View: view, Node: node, Snapshot: snap, Err: err}
	}
}

// SendCmd posts an operation envelope in the background.
func SendCmd(ctx context.Context, b Backend, view, node string, env api.OperationEnvelope) tea.Cmd {
	return func() tea.Msg {
		err := b.Send(ctx, node, env)
		return OpDoneMsg{View: view, Node: node, Op: env.Op, Err: err}
	}
}

// OpenNodeCmd emits an OpenNodeMsg for the given link.
func OpenNodeCmd(link string) tea.Cmd {
	return func() tea.Msg {
		return OpenNodeMsg{Link: link}
	}
}

// NodeNameFromLink extracts the name query parameter of a node detail link.
// An absent or unparseable parameter yields "", which is not rejected.
func NodeNameFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get("name")
}
