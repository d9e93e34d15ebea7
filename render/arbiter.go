package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Arbiter owns the device queue. It serves requests strictly in arrival
// order, one at a time, and replies over the reply path carried in each
// request. It is stateless with respect to the windows that call it.
type Arbiter struct {
	queue   Queue
	channel *Channel

	// set once the device failed; guarded because Reset may be called
	// from outside the arbiter goroutine
	mu       sync.Mutex
	poisoned error
}

func NewArbiter(queue Queue, channel *Channel) *Arbiter {
	return &Arbiter{
		queue:   queue,
		channel: channel,
	}
}

// Run serves requests until ctx is cancelled. An in-flight request always
// receives its ack before Run returns.
func (a *Arbiter) Run(ctx context.Context) error {
	slog.Info("Render arbiter running")

	for {
		req, reply, err := a.channel.ReceiveNext(ctx)
		if err != nil {
			slog.Info("Render arbiter stopping", slog.Any("reason", err))
			return err
		}

		// reply is buffered, this never blocks
		reply <- a.serve(req)
	}
}

func (a *Arbiter) serve(req *Request) Ack {
	if err := a.fatal(); err != nil {
		return Ack{Outcome: Failed, Err: err}
	}

	queuedAt := time.Now()

	err := a.queue.Submit(req)
	switch {
	case err == nil:
		return Ack{
			Outcome:     Presented,
			QueuedAt:    queuedAt,
			PresentedAt: time.Now(),
		}

	case errors.Is(err, ErrSurfaceStale):
		slog.Debug("Stale surface on submit",
			slog.Uint64("window", uint64(req.Window)),
		)

		return Ack{Outcome: SurfaceStale, QueuedAt: queuedAt}

	default:
		// device-fatal: poison the arbiter, every later request is
		// answered Failed until an external reset
		wrapped := fmt.Errorf("submit to device queue: %w", err)
		a.poison(wrapped)

		slog.Error("Device queue failed",
			slog.Uint64("window", uint64(req.Window)),
			slog.Any("error", err),
		)

		return Ack{Outcome: Failed, Err: wrapped, QueuedAt: queuedAt}
	}
}

func (a *Arbiter) fatal() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.poisoned
}

func (a *Arbiter) poison(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.poisoned == nil {
		a.poisoned = err
	}
}

// Reset clears the poisoned state after the device was recovered
// externally, e.g. by recreating it.
func (a *Arbiter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.poisoned = nil
}
