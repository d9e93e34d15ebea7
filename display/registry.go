package display

import (
	"log/slog"
	"sync"
	"time"
)

// Registry is the process wide view of the attached monitors. The display
// glue mutates it, frame schedulers read it. All methods are safe for
// concurrent use and none of them block.
//
// Updates are asynchronous relative to the schedulers: a scheduler may act
// on a stale assignment for one cycle, the next lookup then observes the
// new state.
type Registry struct {
	mu       sync.RWMutex
	monitors map[MonitorID]Monitor
	windows  map[WindowID]MonitorID
	primary  MonitorID
	subs     map[*Subscription]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		monitors: map[MonitorID]Monitor{},
		windows:  map[WindowID]MonitorID{},
		subs:     map[*Subscription]struct{}{},
	}
}

// RefreshIntervalOf returns the refresh interval of the given monitor, or
// DefaultRefreshInterval if the monitor is not (or no longer) known.
func (r *Registry) RefreshIntervalOf(id MonitorID) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.monitors[id]; ok && m.RefreshInterval > 0 {
		return m.RefreshInterval
	}

	return DefaultRefreshInterval
}

// MonitorOf returns the monitor the window currently lives on. A window
// whose monitor was disconnected is reassigned to the primary monitor
// before this returns, so a scheduling decision never sees a destroyed
// monitor more than once.
func (r *Registry) MonitorOf(w WindowID) MonitorID {
	r.mu.RLock()
	id, ok := r.windows[w]
	_, alive := r.monitors[id]
	primary := r.primary
	r.mu.RUnlock()

	if ok && alive {
		return id
	}

	r.mu.Lock()
	r.windows[w] = primary
	r.mu.Unlock()

	return primary
}

// Primary returns the current primary monitor.
func (r *Registry) Primary() MonitorID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}

// AddMonitor registers a new display output. The first monitor added
// becomes the primary one until SetPrimary says otherwise.
func (r *Registry) AddMonitor(m Monitor) {
	r.mu.Lock()
	if len(r.monitors) == 0 {
		r.primary = m.ID
	}
	r.monitors[m.ID] = m
	r.mu.Unlock()

	slog.Info("Monitor attached",
		slog.Uint64("monitor", uint64(m.ID)),
		slog.String("name", m.Name),
		slog.Duration("interval", m.RefreshInterval),
	)

	r.publish(Change{Kind: MonitorAdded, Monitor: m})
}

func (r *Registry) SetPrimary(id MonitorID) {
	r.mu.Lock()
	r.primary = id
	r.mu.Unlock()
}

// RemoveMonitor drops a display output. Windows that lived on it are moved
// to the primary monitor; the emitted change lists them.
func (r *Registry) RemoveMonitor(id MonitorID) {
	r.mu.Lock()
	m := r.monitors[id]
	delete(r.monitors, id)

	var moved []WindowID
	for w, on := range r.windows {
		if on == id {
			r.windows[w] = r.primary
			moved = append(moved, w)
		}
	}

	if r.primary == id {
		for other := range r.monitors {
			r.primary = other
			break
		}
	}
	r.mu.Unlock()

	slog.Info("Monitor detached",
		slog.Uint64("monitor", uint64(id)),
		slog.Int("movedWindows", len(moved)),
	)

	r.publish(Change{Kind: MonitorRemoved, Monitor: m, Windows: moved})
}

// SetRefreshInterval records a refresh rate change. Schedulers pick the new
// interval up on their next deadline computation.
func (r *Registry) SetRefreshInterval(id MonitorID, interval time.Duration) {
	r.mu.Lock()
	m, ok := r.monitors[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	m.RefreshInterval = interval
	r.monitors[id] = m

	var affected []WindowID
	for w, on := range r.windows {
		if on == id {
			affected = append(affected, w)
		}
	}
	r.mu.Unlock()

	r.publish(Change{Kind: IntervalChanged, Monitor: m, Windows: affected})
}

// AttachWindow assigns a window to a monitor. Called when a window opens
// and whenever it migrates to a different monitor.
func (r *Registry) AttachWindow(w WindowID, id MonitorID) {
	r.mu.Lock()
	previous, had := r.windows[w]
	r.windows[w] = id
	m := r.monitors[id]
	r.mu.Unlock()

	if had && previous == id {
		return
	}

	r.publish(Change{Kind: WindowMoved, Monitor: m, Windows: []WindowID{w}})
}

// DetachWindow forgets a closed window.
func (r *Registry) DetachWindow(w WindowID) {
	r.mu.Lock()
	delete(r.windows, w)
	r.mu.Unlock()
}

// Subscription receives monitor change notifications over C.
type Subscription struct {
	C <-chan Change
	c chan Change
}

// Subscribe starts streaming change notifications. Delivery never blocks
// the registry: when the subscriber falls behind, the oldest pending note
// is replaced by a single Resync note.
func (r *Registry) Subscribe() *Subscription {
	c := make(chan Change, 16)
	sub := &Subscription{C: c, c: c}

	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()

	return sub
}

func (r *Registry) Unsubscribe(sub *Subscription) {
	r.mu.Lock()
	delete(r.subs, sub)
	r.mu.Unlock()
}

func (r *Registry) publish(c Change) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for sub := range r.subs {
		select {
		case sub.c <- c:
			continue
		default:
		}

		// subscriber is full: drop the oldest note and leave a resync
		// marker in its place
		select {
		case <-sub.c:
		default:
		}

		select {
		case sub.c <- Change{Kind: Resync}:
		default:
		}
	}
}
