// ABOUTME: Bubble Tea message types used in the dashboard message loop.
// ABOUTME: Results of background fetches and posts are tagged with the view instance that issued them.
package tui

import (
	"time"

	"github.com/2389-research/natdash/api"
)

// TickMsg is the once-per-second refresh tick of one view instance.
type TickMsg struct {
	View string
	Time time.Time
}

// FleetLoadedMsg carries the result of GET /api/nodes/.
type FleetLoadedMsg struct {
	View  string
	Names []string
	Err   error
}

// RegisterDoneMsg carries the outcome of POST /api/nodes/. It only feeds the log.
type RegisterDoneMsg struct {
	View string
	Name string
	Err  error
}

// SnapshotMsg carries the result of GET /api/nodes/{name}.
type SnapshotMsg struct {
	View     string
	Node     string
	Snapshot api.NodeSnapshot
	Err      error
}

// OpDoneMsg carries the outcome of POST /api/nodes/{name}. It only feeds the log.
type OpDoneMsg struct {
	View string
	Node string
	Op   api.OperationKind
	Err  error
}

// OpenNodeMsg asks the app shell to navigate to a node detail link.
type OpenNodeMsg struct {
	Link string
}

// BackToFleetMsg asks the app shell to navigate back to the fleet view.
type BackToFleetMsg struct{}
