// Package render serializes all GPU submission and presentation of the
// process through one arbiter goroutine that owns the single device queue.
// Windows talk to the arbiter over a request/reply channel; the reply path
// travels inline with every request, the arbiter keeps no table of windows.
package render

import (
	"time"

	"github.com/oliverbestmann/maple/display"
)

// Outcome classifies how the arbiter disposed of a request.
type Outcome uint8

const (
	// Presented means the commands were submitted and the image was
	// handed to the presentation engine.
	Presented Outcome = iota

	// SurfaceStale means the target surface no longer matches the window,
	// e.g. after a resize or a video mode switch. The window recreates its
	// surface and retries; this outcome is never an error.
	SurfaceStale

	// Failed means the device rejected the submission. The arbiter
	// refuses all further requests until it is reset.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Presented:
		return "presented"
	case SurfaceStale:
		return "surface-stale"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is the SubmitAndPresent message a window sends to the arbiter.
// It lives for exactly one redraw.
type Request struct {
	// Window identifies the requester, for logs only. The arbiter holds
	// no per-window state.
	Window display.WindowID

	// Commands is the recorded draw work plus its target surface image.
	// The arbiter never looks inside, only the Queue that submits it does.
	Commands any

	// ImageIndex is the presentation surface image the commands render to.
	ImageIndex uint32

	// replyTo carries the ack back to the window. Always buffered, the
	// arbiter never blocks on it.
	replyTo chan Ack
}

// Ack is the arbiter's answer to one Request.
type Ack struct {
	Outcome Outcome

	// Err is set when Outcome is Failed.
	Err error

	// QueuedAt is taken just before submission, PresentedAt just after
	// presentation. Both are zero when the request never reached the
	// queue.
	QueuedAt    time.Time
	PresentedAt time.Time
}

// ReplyPath is the inline-supplied destination for one Ack.
type ReplyPath chan<- Ack
