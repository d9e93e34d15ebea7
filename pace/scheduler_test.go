package pace

import (
	"testing"
	"time"
)

// fixed interval resolver plus a manual clock
type env struct {
	interval time.Duration
	now      time.Time
}

func (e *env) scheduler(opts ...Option) *Scheduler {
	opts = append(opts, WithClock(func() time.Time { return e.now }))
	return New(func() time.Duration { return e.interval }, opts...)
}

func TestNoDeadlineWhenIdle(t *testing.T) {
	e := &env{interval: 16 * time.Millisecond, now: time.Unix(100, 0)}
	s := e.scheduler()

	if _, ok := s.NextDeadline(); ok {
		t.Error("idle scheduler reported a deadline")
	}

	// a completed redraw on a non-animating window goes back to idle
	s.OnInputEvent()
	s.MarkRedrawn(e.now)

	if _, ok := s.NextDeadline(); ok {
		t.Error("scheduler still has a deadline after MarkRedrawn")
	}
}

func TestFirstRedrawIsImmediate(t *testing.T) {
	e := &env{interval: 16 * time.Millisecond, now: time.Unix(100, 0)}
	s := e.scheduler()
	s.OnInputEvent()

	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatal("no deadline after input")
	}
	if !deadline.Equal(e.now) {
		t.Errorf("first deadline = %v, want now (%v)", deadline, e.now)
	}
}

func TestInputIsCappedAtRefreshInterval(t *testing.T) {
	e := &env{interval: 16 * time.Millisecond, now: time.Unix(100, 0)}
	s := e.scheduler(WithCadence(4))

	s.MarkRedrawn(e.now)
	s.OnInputEvent()

	// input pulls the deadline below the 4x cadence, but not below one
	// full refresh interval after the last redraw
	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatal("no deadline after input")
	}

	want := e.now.Add(16 * time.Millisecond)
	if !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
}

func TestAnimationUsesCadence(t *testing.T) {
	e := &env{interval: 10 * time.Millisecond, now: time.Unix(100, 0)}
	s := e.scheduler(WithCadence(3))
	s.SetAnimating(true)

	s.MarkRedrawn(e.now)

	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatal("animating scheduler has no deadline")
	}

	want := e.now.Add(30 * time.Millisecond)
	if !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}

	// animation survives MarkRedrawn
	s.MarkRedrawn(e.now.Add(30 * time.Millisecond))
	if _, ok := s.NextDeadline(); !ok {
		t.Error("animation stopped after MarkRedrawn")
	}
}

func TestDeadlineUsesCurrentInterval(t *testing.T) {
	e := &env{interval: 16 * time.Millisecond, now: time.Unix(100, 0)}
	s := e.scheduler()
	s.SetAnimating(true)
	s.MarkRedrawn(e.now)

	first, _ := s.NextDeadline()
	if want := e.now.Add(16 * time.Millisecond); !first.Equal(want) {
		t.Errorf("deadline = %v, want %v", first, want)
	}

	// the window migrated to a faster monitor: the very next computation
	// must use the new interval, no stale value may linger
	e.interval = 8 * time.Millisecond

	second, _ := s.NextDeadline()
	if want := e.now.Add(8 * time.Millisecond); !second.Equal(want) {
		t.Errorf("deadline after interval change = %v, want %v", second, want)
	}
}

func TestRedrawSpacingUnderInputPressure(t *testing.T) {
	const interval = 16 * time.Millisecond

	e := &env{interval: interval, now: time.Unix(100, 0)}
	s := e.scheduler()

	var redraws []time.Time

	// continuous input pressure for 20 simulated cycles
	for i := 0; i < 20; i++ {
		s.OnInputEvent()

		deadline, ok := s.NextDeadline()
		if !ok {
			t.Fatal("no deadline under input pressure")
		}

		// time passes until the deadline fires
		if deadline.After(e.now) {
			e.now = deadline
		}

		redraws = append(redraws, e.now)
		s.MarkRedrawn(e.now)
	}

	for i := 1; i < len(redraws); i++ {
		if spacing := redraws[i].Sub(redraws[i-1]); spacing < interval {
			t.Fatalf("redraws %d and %d only %v apart, want >= %v", i-1, i, spacing, interval)
		}
	}
}

func TestTwoMonitorsPaceIndependently(t *testing.T) {
	// two animating windows on a 16.6ms and an 8.3ms monitor over 100ms of
	// simulated time draw roughly 6 and 12 frames
	start := time.Unix(100, 0)

	run := func(interval time.Duration) int {
		e := &env{interval: interval, now: start}
		s := e.scheduler()
		s.SetAnimating(true)
		s.MarkRedrawn(e.now)

		redraws := 0
		for {
			deadline, ok := s.NextDeadline()
			if !ok {
				t.Fatal("animating scheduler lost its deadline")
			}
			if deadline.After(start.Add(100 * time.Millisecond)) {
				return redraws
			}

			e.now = deadline
			s.MarkRedrawn(e.now)
			redraws++
		}
	}

	slow := run(16600 * time.Microsecond)
	fast := run(8300 * time.Microsecond)

	if slow != 6 {
		t.Errorf("16.6ms window drew %d frames in 100ms, want 6", slow)
	}
	if fast != 12 {
		t.Errorf("8.3ms window drew %d frames in 100ms, want 12", fast)
	}
}

func TestCadenceClamp(t *testing.T) {
	s := New(func() time.Duration { return time.Millisecond })

	s.SetCadence(0)
	if got := s.Cadence(); got != 1 {
		t.Errorf("Cadence() = %d after SetCadence(0), want 1", got)
	}

	s.SetCadence(-3)
	if got := s.Cadence(); got != 1 {
		t.Errorf("Cadence() = %d after SetCadence(-3), want 1", got)
	}
}

func TestZeroIntervalFallsBack(t *testing.T) {
	e := &env{interval: 0, now: time.Unix(100, 0)}
	s := e.scheduler()
	s.SetAnimating(true)
	s.MarkRedrawn(e.now)

	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatal("no deadline")
	}

	if !deadline.After(e.now) {
		t.Errorf("deadline %v not after now with a broken interval resolver", deadline)
	}
}

func TestFrameTimes(t *testing.T) {
	var ft FrameTimes

	now := time.Unix(100, 0)
	for i := 0; i < 10; i++ {
		ft.Tick(now)
		now = now.Add(10 * time.Millisecond)
	}

	if ft.FrameCount != 10 {
		t.Errorf("FrameCount = %d, want 10", ft.FrameCount)
	}

	if got := ft.FPS(); got < 99 || got > 101 {
		t.Errorf("FPS() = %v, want ~100", got)
	}
}
