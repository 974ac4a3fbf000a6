// ABOUTME: Tests for the shared countdown step used by the fleet and node views.
// ABOUTME: Checks the tick command shape and the status bar text without running tick commands.
package tui

import (
	"testing"

	"github.com/2389-research/natdash/refresh"
	tea "github.com/charmbracelet/bubbletea"
)

func TestTickCountdown(t *testing.T) {
	timer := refresh.NewTimer(3)
	status := NewStatusBarModel("Fleet", "")

	refreshed := 0
	refreshCmd := func() tea.Msg { refreshed++; return nil }
	next := func() tea.Msg { return nil }

	wantCountdowns := []string{
		"Automatic refresh in 2 seconds",
		"Automatic refresh in 1 seconds",
		"Automatic refresh in 3 seconds",
	}
	for i, want := range wantCountdowns {
		cmd := tickCountdown(&timer, &status, refreshCmd, next)
		if status.Countdown() != want {
			t.Errorf("tick %d: countdown = %q, want %q", i+1, status.Countdown(), want)
		}
		due := i == 2
		if _, isBatch := cmd().(tea.BatchMsg); isBatch != due {
			t.Errorf("tick %d: batched = %v, want %v", i+1, isBatch, due)
		}
		if due {
			batchCmds(t, cmd)[0]()
		}
	}
	if refreshed != 1 {
		t.Errorf("refreshes = %d, want 1", refreshed)
	}
	if timer.Count() != 0 {
		t.Errorf("count = %d, want 0 after a full period", timer.Count())
	}
}

func TestRestartCountdown(t *testing.T) {
	timer := refresh.NewTimer(5)
	status := NewStatusBarModel("Node", "")
	timer.Tick()
	timer.Tick()

	restartCountdown(&timer, &status)

	if timer.Count() != 0 {
		t.Errorf("count = %d, want 0", timer.Count())
	}
	if status.Countdown() != "Automatic refresh in 5 seconds" {
		t.Errorf("countdown = %q", status.Countdown())
	}
}
