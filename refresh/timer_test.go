// ABOUTME: Tests for the refresh Timer and Scheduler using a hand-fed clock.
// ABOUTME: Covers period wrap-around, manual refresh, countdown bounds, and the Run loop.
package refresh

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimerFiresOncePerPeriod(t *testing.T) {
	timer := NewTimer(DefaultPeriod)

	fired := 0
	for i := 0; i < DefaultPeriod; i++ {
		if timer.Tick() {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("fired = %d after %d ticks, want 1", fired, DefaultPeriod)
	}
	if timer.Count() != 0 {
		t.Errorf("Count() = %d, want 0", timer.Count())
	}
}

func TestTimerFiresOnLastTickOnly(t *testing.T) {
	timer := NewTimer(5)
	for i := 1; i <= 12; i++ {
		got := timer.Tick()
		want := i%5 == 0
		if got != want {
			t.Errorf("tick %d: fired = %v, want %v", i, got, want)
		}
	}
}

func TestTimerNonPositivePeriodDefaults(t *testing.T) {
	for _, p := range []int{0, -3} {
		if got := NewTimer(p).Period(); got != DefaultPeriod {
			t.Errorf("NewTimer(%d).Period() = %d, want %d", p, got, DefaultPeriod)
		}
	}
}

func TestTimerRemainingBounds(t *testing.T) {
	timer := NewTimer(5)
	for i := 0; i < 20; i++ {
		r := timer.Remaining()
		if r < 1 || r > timer.Period() {
			t.Fatalf("Remaining() = %d at tick %d, want within [1, %d]", r, timer.Count(), timer.Period())
		}
		if r != timer.Period()-timer.Count() {
			t.Fatalf("Remaining() = %d, want period - tick = %d", r, timer.Period()-timer.Count())
		}
		timer.Tick()
	}
}

func TestTimerCountdown(t *testing.T) {
	timer := NewTimer(5)
	if got := timer.Countdown(); got != "Automatic refresh in 5 seconds" {
		t.Errorf("Countdown() = %q", got)
	}
	timer.Tick()
	timer.Tick()
	if got := timer.Countdown(); got != "Automatic refresh in 3 seconds" {
		t.Errorf("Countdown() = %q", got)
	}
}

// probe counts scheduler callbacks.
type probe struct {
	refreshes int
	rendered  []string
}

func (p *probe) refresh()           { p.refreshes++ }
func (p *probe) render(text string) { p.rendered = append(p.rendered, text) }
func (p *probe) last() string       { return p.rendered[len(p.rendered)-1] }

func newProbeScheduler(p *probe) *Scheduler {
	return NewScheduler(DefaultPeriod, p.refresh, p.render)
}

func TestSchedulerTickRendersEveryTime(t *testing.T) {
	p := &probe{}
	s := newProbeScheduler(p)

	for i := 0; i < DefaultPeriod; i++ {
		s.Tick()
	}
	if p.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", p.refreshes)
	}
	if len(p.rendered) != DefaultPeriod {
		t.Errorf("renders = %d, want %d", len(p.rendered), DefaultPeriod)
	}
	if p.last() != "Automatic refresh in 5 seconds" {
		t.Errorf("last render = %q", p.last())
	}
}

func TestSchedulerForceRefreshAtAnyTick(t *testing.T) {
	for start := 0; start < DefaultPeriod; start++ {
		p := &probe{}
		s := newProbeScheduler(p)
		for i := 0; i < start; i++ {
			s.Tick()
		}
		before := p.refreshes

		s.ForceRefresh()

		if p.refreshes-before != 1 {
			t.Errorf("start %d: ForceRefresh issued %d fetches, want 1", start, p.refreshes-before)
		}
		if s.Timer().Count() != 0 {
			t.Errorf("start %d: tick = %d after ForceRefresh, want 0", start, s.Timer().Count())
		}
		if p.last() != "Automatic refresh in 5 seconds" {
			t.Errorf("start %d: render = %q", start, p.last())
		}

		// The next automatic refresh is a full period away, not double-counted.
		for i := 0; i < DefaultPeriod-1; i++ {
			s.Tick()
		}
		if p.refreshes-before != 1 {
			t.Errorf("start %d: refreshed early after ForceRefresh", start)
		}
		s.Tick()
		if p.refreshes-before != 2 {
			t.Errorf("start %d: no refresh one period after ForceRefresh", start)
		}
	}
}

func TestSchedulerRenderCountdownHasNoSideEffects(t *testing.T) {
	p := &probe{}
	s := newProbeScheduler(p)
	s.Tick()

	s.RenderCountdown()
	s.RenderCountdown()

	if p.refreshes != 0 {
		t.Errorf("refreshes = %d, want 0", p.refreshes)
	}
	if s.Timer().Count() != 1 {
		t.Errorf("tick = %d, want 1", s.Timer().Count())
	}
	if p.last() != "Automatic refresh in 4 seconds" {
		t.Errorf("render = %q", p.last())
	}
}

func TestSchedulerNilRender(t *testing.T) {
	refreshes := 0
	s := NewScheduler(2, func() { refreshes++ }, nil)
	s.Tick()
	s.Tick()
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
}

func TestSchedulerRunManualClock(t *testing.T) {
	p := &probe{}
	s := newProbeScheduler(p)

	ticks := make(chan time.Time)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), ticks)
	}()

	for i := 0; i < 2*DefaultPeriod; i++ {
		ticks <- time.Now()
	}
	close(ticks)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil on closed channel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after ticks closed")
	}
	if p.refreshes != 2 {
		t.Errorf("refreshes = %d, want 2", p.refreshes)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	s := NewScheduler(DefaultPeriod, func() {}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, make(chan time.Time))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
