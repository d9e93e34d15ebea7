// Package pace decides when a window has to redraw next. One Scheduler per
// window, used only from that window's goroutine.
package pace

import (
	"time"

	"github.com/oliverbestmann/maple/display"
)

// IntervalFunc resolves the refresh interval of the monitor the window
// currently lives on. It is consulted again on every deadline computation,
// so a monitor move or mode switch takes effect on the very next call.
type IntervalFunc func() time.Duration

type Scheduler struct {
	interval IntervalFunc
	now      func() time.Time

	multiple     int
	lastRedraw   time.Time
	updateNeeded bool
	animating    bool
}

type Option func(*Scheduler)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithCadence sets the redraw cadence as a multiple of the monitor refresh
// interval. Values below 1 are clamped to 1.
func WithCadence(multiple int) Option {
	return func(s *Scheduler) {
		s.SetCadence(multiple)
	}
}

func New(interval IntervalFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: interval,
		now:      time.Now,
		multiple: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ForWindow builds a scheduler that re-resolves the window's monitor
// through the registry on every deadline computation.
func ForWindow(reg *display.Registry, id display.WindowID, opts ...Option) *Scheduler {
	return New(func() time.Duration {
		return reg.RefreshIntervalOf(reg.MonitorOf(id))
	}, opts...)
}

func (s *Scheduler) SetCadence(multiple int) {
	s.multiple = max(1, multiple)
}

func (s *Scheduler) Cadence() int {
	return s.multiple
}

// OnInputEvent marks the window content as dirty. The next deadline is
// pulled in to "as soon as allowed": input never makes a window redraw
// faster than its monitor refreshes.
func (s *Scheduler) OnInputEvent() {
	s.updateNeeded = true
}

// SetAnimating switches continuous redraw on or off. While animating, the
// scheduler always has a deadline at the configured cadence.
func (s *Scheduler) SetAnimating(animating bool) {
	s.animating = animating
}

func (s *Scheduler) Animating() bool {
	return s.animating
}

// NextDeadline computes the instant of the next required redraw. The
// second return value is false when the window has nothing to show: no
// pending update and no running animation. The caller then blocks on input
// alone, without a timeout.
//
// The refresh interval is re-resolved on every call, never cached, so the
// deadline is always derived from the most recently observed interval.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	if !s.updateNeeded && !s.animating {
		return time.Time{}, false
	}

	interval := s.interval()
	if interval <= 0 {
		interval = display.DefaultRefreshInterval
	}

	// nothing was drawn yet, draw right away
	if s.lastRedraw.IsZero() {
		return s.now(), true
	}

	deadline := s.lastRedraw.Add(interval * time.Duration(s.multiple))

	if s.updateNeeded {
		// pending input pulls the deadline in, but no closer than one
		// refresh interval after the previous redraw
		if earliest := s.lastRedraw.Add(interval); earliest.Before(deadline) {
			deadline = earliest
		}
	}

	return deadline, true
}

// MarkRedrawn records a completed redraw and clears the dirty flag. The
// animation flag is untouched, an animating window stays scheduled.
func (s *Scheduler) MarkRedrawn(t time.Time) {
	s.lastRedraw = t
	s.updateNeeded = false
}
