// Package display tracks the attached monitors, their refresh intervals and
// which window currently lives on which monitor.
package display

import "time"

// MonitorID identifies a display output for the lifetime of a session.
// IDs are never reused, a reconnected monitor gets a fresh one.
type MonitorID uint32

// WindowID identifies an open window.
type WindowID uint32

// DefaultRefreshInterval is assumed when a monitor's real refresh interval
// is unknown, e.g. right after a disconnect.
const DefaultRefreshInterval = time.Second / 60

// Monitor describes one display output.
type Monitor struct {
	ID              MonitorID
	Name            string
	RefreshInterval time.Duration
}

type ChangeKind uint8

const (
	// MonitorAdded reports a newly enumerated display output.
	MonitorAdded ChangeKind = iota

	// MonitorRemoved reports a disconnect. Windows that lived on the
	// monitor are listed in the change and have already been moved to the
	// primary monitor when the change is delivered.
	MonitorRemoved

	// IntervalChanged reports a refresh rate change, e.g. after a video
	// mode switch.
	IntervalChanged

	// WindowMoved reports that a window now lives on a different monitor.
	WindowMoved

	// Resync replaces dropped notes when a subscriber falls behind. The
	// subscriber should re-read the registry instead of relying on the
	// change stream.
	Resync
)

func (k ChangeKind) String() string {
	switch k {
	case MonitorAdded:
		return "monitor-added"
	case MonitorRemoved:
		return "monitor-removed"
	case IntervalChanged:
		return "interval-changed"
	case WindowMoved:
		return "window-moved"
	case Resync:
		return "resync"
	default:
		return "unknown"
	}
}

// Change is one monitor change notification.
type Change struct {
	Kind    ChangeKind
	Monitor Monitor

	// Windows lists the windows affected by the change.
	Windows []WindowID
}
