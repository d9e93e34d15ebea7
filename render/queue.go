package render

import "errors"

// ErrSurfaceStale is returned by a Queue when the request's target surface
// no longer matches the window. Queue implementations wrap it; the arbiter
// turns it into a SurfaceStale ack.
var ErrSurfaceStale = errors.New("render: presentation surface is stale")

// ErrDeviceLost is the unrecoverable device error. Anything that is not a
// stale surface poisons the arbiter.
var ErrDeviceLost = errors.New("render: device lost")

// Queue is the single device submission queue. Exactly one Arbiter owns a
// Queue and only ever touches it from its own goroutine; that ownership is
// the whole synchronization story, there is no lock.
type Queue interface {
	// Submit executes the request's recorded commands against the device
	// queue and presents the target surface image.
	Submit(req *Request) error
}
