package window

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/oliverbestmann/maple/display"
	"github.com/oliverbestmann/maple/render"
)

// Manager spawns window actors and tracks their lifetime. It hands each
// actor its own sending side of the shared render channel and detaches the
// window from the monitor registry once the actor is gone.
type Manager struct {
	registry *display.Registry
	channel  *render.Channel

	mu     sync.Mutex
	actors map[display.WindowID]*Actor
	nextID display.WindowID

	wg   sync.WaitGroup
	errs chan error
}

func NewManager(registry *display.Registry, channel *render.Channel) *Manager {
	return &Manager{
		registry: registry,
		channel:  channel,
		actors:   make(map[display.WindowID]*Actor),
		nextID:   1,
		errs:     make(chan error, 64),
	}
}

// NextID reserves a fresh window id.
func (m *Manager) NextID() display.WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	return id
}

// Spawn starts the actor for opts on its own goroutine. The Channel field
// of opts is filled in by the manager.
func (m *Manager) Spawn(opts Options) *Actor {
	opts.Channel = m.channel.ForWindow()
	if opts.Registry == nil {
		opts.Registry = m.registry
	}

	actor := New(opts)

	m.mu.Lock()
	m.actors[actor.id] = actor
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		err := actor.run()

		m.mu.Lock()
		delete(m.actors, actor.id)
		m.mu.Unlock()

		m.registry.DetachWindow(actor.id)

		if err != nil {
			m.errs <- err
		}
	}()

	return actor
}

// Lookup returns the running actor for id, or nil.
func (m *Manager) Lookup(id display.WindowID) *Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actors[id]
}

// Count reports the number of windows still running.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actors)
}

// CloseAll asks every running actor to shut down.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, actor := range m.actors {
		actor.Close()
	}
}

// WaitIdle blocks until every spawned actor has shut down and returns the
// joined errors of the actors that failed.
func (m *Manager) WaitIdle() error {
	m.wg.Wait()

	slog.Info("All windows closed")

	var errs []error
	for {
		select {
		case err := <-m.errs:
			errs = append(errs, err)
		default:
			return errors.Join(errs...)
		}
	}
}
