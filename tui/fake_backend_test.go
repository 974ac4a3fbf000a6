// ABOUTME: In-memory Backend used by the view tests to record calls and serve canned results.
// ABOUTME: Also provides helpers to run tea.Cmds, unwrap batches, and build key messages.
package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/2389-research/natdash/api"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeCall records one backend invocation.
type fakeCall struct {
	Method string
	Node   string
	Reg    api.RegisterRequest
	Env    api.OperationEnvelope
}

type fakeBackend struct {
	mu       sync.Mutex
	calls    []fakeCall
	names    []string
	snapshot api.NodeSnapshot
	err      error
}

func (f *fakeBackend) record(c fakeCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func (f *fakeBackend) ListNodes(_ context.Context) ([]string, error) {
	f.record(fakeCall{Method: "ListNodes"})
	return f.names, f.err
}

func (f *fakeBackend) RegisterNode(_ context.Context, req api.RegisterRequest) error {
	f.record(fakeCall{Method: "RegisterNode", Reg: req})
	return f.err
}

func (f *fakeBackend) Snapshot(_ context.Context, name string) (api.NodeSnapshot, error) {
	f.record(fakeCall{Method: "Snapshot", Node: name})
	return f.snapshot, f.err
}

func (f *fakeBackend) Send(_ context.Context, name string, env api.OperationEnvelope) error {
	f.record(fakeCall{Method: "Send", Node: name, Env: env})
	return f.err
}

// batchCmds unwraps a tea.Batch into its commands without running them.
func batchCmds(t *testing.T, cmd tea.Cmd) []tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a batch command, got nil")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch command")
	}
	return batch
}

// runCmds runs cmd, expanding one level of batching, and returns the
// messages in batch order. It must not be given tick commands, which sleep.
func runCmds(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	out := make([]tea.Msg, 0, len(batch))
	for _, sub := range batch {
		out = append(out, sub())
	}
	return out
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
