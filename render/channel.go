package render

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Channel is the inbound side of the request/reply pairing between windows
// and the arbiter. All windows share one request channel; replies travel
// over the per-request reply path, so nothing has to be registered or
// unregistered when windows come and go.
type Channel struct {
	requests chan *Request
}

func NewChannel() *Channel {
	return &Channel{
		// unbuffered: a send completes exactly when the arbiter picks the
		// request up, which makes arrival order the service order
		requests: make(chan *Request),
	}
}

// ReceiveNext blocks until the next request arrives and hands it out
// together with its inline reply path. Returns an error only when ctx is
// cancelled.
func (c *Channel) ReceiveNext(ctx context.Context) (*Request, ReplyPath, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case req := <-c.requests:
		return req, req.replyTo, nil
	}
}

// ForWindow creates the window-side handle. Each window gets its own
// handle; the handle must only be used from that window's goroutine.
func (c *Channel) ForWindow() *WindowSide {
	return &WindowSide{
		requests: c.requests,
		reply:    make(chan Ack, 1),
	}
}

// WindowSide is one window's sending end of the channel.
type WindowSide struct {
	requests chan<- *Request

	// reply is reused for every request of this window. Buffered so the
	// arbiter can always reply without blocking.
	reply chan Ack

	outstanding atomic.Bool
}

// SendAndAwait submits the request and blocks until the arbiter's ack
// arrives. At most one request per window may be in flight; a second call
// while one is outstanding is a protocol violation and panics.
func (w *WindowSide) SendAndAwait(req *Request) Ack {
	if !w.outstanding.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("render: window %d sent a request while one is outstanding", req.Window))
	}
	defer w.outstanding.Store(false)

	req.replyTo = w.reply
	w.requests <- req

	return <-w.reply
}
