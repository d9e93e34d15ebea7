// Package window runs one goroutine per open window. Each actor owns its
// window's presentation surface and scheduler, blocks on input or on the
// next redraw deadline, and talks to the render arbiter through a
// synchronous request/ack exchange.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oliverbestmann/maple/display"
	"github.com/oliverbestmann/maple/pace"
	"github.com/oliverbestmann/maple/render"
)

// FrameState is the actor's position in the redraw cycle.
type FrameState uint8

const (
	// Idle waits for input or the next deadline, whichever comes first.
	Idle FrameState = iota

	// Scheduled means the deadline fired and commands are being recorded.
	Scheduled

	// AwaitingPresent means the request is sent and the actor blocks on
	// the arbiter's ack.
	AwaitingPresent

	// Closed is terminal.
	Closed
)

func (s FrameState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case AwaitingPresent:
		return "awaiting-present"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Surface is the swap-chain-like presentation surface of one window. The
// drawing side and the GPU glue implement it; the actor only ever
// recreates it after a stale ack and releases it on close.
type Surface interface {
	// Recreate drops and rebuilds the surface after it went stale.
	Recreate() error

	// Release frees the surface. The actor calls this only once no
	// submission can still reference the surface.
	Release()
}

// RecordFunc records one frame of draw work: acquire the next surface
// image, encode the commands, and wrap both into a request for the
// arbiter. Returning an error wrapping render.ErrSurfaceStale makes the
// actor recreate its surface and retry.
type RecordFunc func() (*render.Request, error)

// InputEvent is an opaque event delivered by the windowing glue.
type InputEvent any

type Options struct {
	ID    display.WindowID
	Title string

	Registry *display.Registry
	Channel  *render.WindowSide
	Surface  Surface
	Record   RecordFunc

	// Cadence is the redraw interval as a multiple of the monitor
	// refresh interval. Zero means 1.
	Cadence int

	// Animate requests continuous redraws at the configured cadence.
	Animate bool

	// OnInput lets the window content react to events before the redraw
	// they trigger. Optional.
	OnInput func(InputEvent)

	// Clock for tests; defaults to time.Now.
	Clock func() time.Time
}

// Actor is the event loop of one window.
type Actor struct {
	id      display.WindowID
	title   string
	sched   *pace.Scheduler
	channel *render.WindowSide
	surface Surface
	record  RecordFunc
	onInput func(InputEvent)
	now     func() time.Time

	input     chan InputEvent
	closing   chan struct{}
	closeOnce sync.Once

	done chan struct{}
	err  error

	// observable from other goroutines, written only by the actor
	state atomic.Uint32

	times pace.FrameTimes
}

func New(opts Options) *Actor {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	sched := pace.ForWindow(opts.Registry, opts.ID,
		pace.WithCadence(opts.Cadence),
		pace.WithClock(now),
	)
	sched.SetAnimating(opts.Animate)

	return &Actor{
		id:      opts.ID,
		title:   opts.Title,
		sched:   sched,
		channel: opts.Channel,
		surface: opts.Surface,
		record:  opts.Record,
		onInput: opts.OnInput,
		now:     now,
		input:   make(chan InputEvent, 64),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Deliver hands an input event to the actor. It never blocks; events that
// arrive faster than the actor drains them are dropped, the pending-update
// flag makes the next redraw pick the state up anyway.
func (a *Actor) Deliver(ev InputEvent) {
	select {
	case a.input <- ev:
	default:
		slog.Debug("Input event dropped", slog.Uint64("window", uint64(a.id)))
	}
}

// Close asks the actor to shut down. An in-flight render request is not
// preempted; its ack is drained before the surface is released.
func (a *Actor) Close() {
	a.closeOnce.Do(func() { close(a.closing) })
}

// Done is closed once the actor has fully shut down.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Err reports why the window closed. Only valid after Done.
func (a *Actor) Err() error {
	return a.err
}

func (a *Actor) ID() display.WindowID {
	return a.id
}

// State returns the current frame state, for instrumentation.
func (a *Actor) State() FrameState {
	return FrameState(a.state.Load())
}

func (a *Actor) setState(s FrameState) {
	a.state.Store(uint32(s))
}

// run is the event loop. It returns when the window closes, with the
// device error if one ended the window.
func (a *Actor) run() error {
	defer close(a.done)

	// the pending ack is always drained before this runs: SendAndAwait is
	// synchronous, so no submission can still reference the surface here
	defer a.surface.Release()

	slog.Info("Window actor running",
		slog.Uint64("window", uint64(a.id)),
		slog.String("title", a.title),
	)

	for {
		deadline, scheduled := a.sched.NextDeadline()

		var due <-chan time.Time
		var timer *time.Timer
		if scheduled {
			timer = time.NewTimer(max(0, deadline.Sub(a.now())))
			due = timer.C
		}

		select {
		case <-a.closing:
			if timer != nil {
				timer.Stop()
			}
			a.setState(Closed)
			slog.Info("Window closed", slog.Uint64("window", uint64(a.id)))
			return nil

		case ev := <-a.input:
			if timer != nil {
				timer.Stop()
			}

			a.sched.OnInputEvent()
			if a.onInput != nil {
				a.onInput(ev)
			}

		case <-due:
			if err := a.redraw(); err != nil {
				a.setState(Closed)
				a.err = err

				slog.Error("Window closed by device error",
					slog.Uint64("window", uint64(a.id)),
					slog.Any("error", err),
				)
				return err
			}
		}
	}
}

// redraw records and submits one frame. A stale surface is recreated and
// retried exactly once; if the retry is stale again the update stays
// pending and the next cycle tries anew.
func (a *Actor) redraw() error {
	const attempts = 2

	for attempt := 0; attempt < attempts; attempt++ {
		a.setState(Scheduled)

		req, err := a.record()
		if err != nil {
			if errors.Is(err, render.ErrSurfaceStale) {
				if err := a.surface.Recreate(); err != nil {
					return fmt.Errorf("recreate surface: %w", err)
				}
				continue
			}

			return fmt.Errorf("record frame: %w", err)
		}

		a.setState(AwaitingPresent)
		ack := a.channel.SendAndAwait(req)

		switch ack.Outcome {
		case render.Presented:
			a.sched.MarkRedrawn(a.now())

			if a.times.Tick(a.now()) {
				slog.Debug("Window pacing",
					slog.Uint64("window", uint64(a.id)),
					slog.Float64("fps", a.times.FPS()),
					slog.Duration("maxInterval", a.times.MaxInterval),
				)
			}

			a.setState(Idle)
			return nil

		case render.SurfaceStale:
			if err := a.surface.Recreate(); err != nil {
				return fmt.Errorf("recreate surface: %w", err)
			}

		case render.Failed:
			return fmt.Errorf("present window %q: %w", a.title, ack.Err)
		}
	}

	a.setState(Idle)
	return nil
}
