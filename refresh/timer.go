// ABOUTME: Countdown/poll primitive shared by the dashboard views: a tick counter that fires a refresh every period.
// ABOUTME: Timer is the bare state machine; Scheduler binds it to refresh and render callbacks and a host clock.
package refresh

import (
	"context"
	"fmt"
	"time"
)

// DefaultPeriod is the number of one-second ticks between automatic refreshes.
const DefaultPeriod = 5

// Timer counts ticks towards the next automatic refresh. The zero value is
// not usable; construct with NewTimer.
//
// Invariant: 0 <= tick < period between calls.
type Timer struct {
	tick   int
	period int
}

// NewTimer returns a Timer with the given period. Non-positive periods fall
// back to DefaultPeriod.
func NewTimer(period int) Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return Timer{period: period}
}

// Tick advances the counter by one. When the counter reaches the period it
// wraps to zero and Tick returns true: exactly one refresh is due.
func (t *Timer) Tick() bool {
	t.tick++
	if t.tick == t.period {
		t.tick = 0
		return true
	}
	return false
}

// Reset puts the counter back to zero, as after a manual refresh.
func (t *Timer) Reset() {
	t.tick = 0
}

// Count returns the current tick counter.
func (t Timer) Count() int {
	return t.tick
}

// Period returns the number of ticks between automatic refreshes.
func (t Timer) Period() int {
	return t.period
}

// Remaining returns the seconds until the next automatic refresh, in [1, period].
func (t Timer) Remaining() int {
	return t.period - t.tick
}

// Countdown renders the operator-facing staleness line.
func (t Timer) Countdown() string {
	return CountdownText(t.Remaining())
}

// CountdownText formats the countdown line for the given number of seconds.
func CountdownText(remaining int) string {
	return fmt.Sprintf("Automatic refresh in %d seconds", remaining)
}

// Scheduler drives a Timer from a host clock and fans out to bound callbacks.
// Refresh must not block: it is expected to start an asynchronous fetch and
// return. Scheduler is not safe for concurrent use; like the views it serves,
// it is meant to be driven from a single goroutine.
type Scheduler struct {
	timer   Timer
	refresh func()
	render  func(string)
}

// NewScheduler creates a Scheduler. A nil render function discards countdown text.
func NewScheduler(period int, refresh func(), render func(string)) *Scheduler {
	if render == nil {
		render = func(string) {}
	}
	return &Scheduler{
		timer:   NewTimer(period),
		refresh: refresh,
		render:  render,
	}
}

// Tick is the once-per-second callback: advance, refresh if due, then render.
func (s *Scheduler) Tick() {
	if s.timer.Tick() {
		s.refresh()
	}
	s.RenderCountdown()
}

// RenderCountdown writes the countdown text. It has no other side effects.
func (s *Scheduler) RenderCountdown() {
	s.render(s.timer.Countdown())
}

// ForceRefresh refreshes immediately and restarts the period, so the next
// automatic refresh is a full period away.
func (s *Scheduler) ForceRefresh() {
	s.refresh()
	s.timer.Reset()
	s.RenderCountdown()
}

// Timer returns a copy of the underlying timer state.
func (s *Scheduler) Timer() Timer {
	return s.timer
}

// Run calls Tick for every value received on ticks until ctx is done or ticks
// is closed. Pass time.Ticker.C in production and a hand-fed channel in tests.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			s.Tick()
		}
	}
}
