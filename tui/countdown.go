// ABOUTME: Shared countdown step for the fleet and node views: advance the refresh timer and show the staleness line.
// ABOUTME: Both views route ticks and manual refreshes through these helpers.
package tui

import (
	"github.com/2389-research/natdash/refresh"
	tea "github.com/charmbracelet/bubbletea"
)

// tickCountdown advances timer by one tick and shows the new countdown on
// status. The returned command is next alone, or refresh batched with next
// when the period has elapsed.
func tickCountdown(timer *refresh.Timer, status *StatusBarModel, refresh, next tea.Cmd) tea.Cmd {
	due := timer.Tick()
	status.SetCountdown(timer.Countdown())
	if due {
		return tea.Batch(refresh, next)
	}
	return next
}

// restartCountdown resets timer after a manual refresh and shows the full period.
func restartCountdown(timer *refresh.Timer, status *StatusBarModel) {
	timer.Reset()
	status.SetCountdown(timer.Countdown())
}
