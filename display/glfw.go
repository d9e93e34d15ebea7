//go:build !js

package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFWSource feeds a Registry from the glfw monitor state. It must be used
// from the thread that owns glfw, usually the main thread.
type GLFWSource struct {
	reg *Registry

	mu     sync.Mutex
	ids    map[*glfw.Monitor]MonitorID
	nextID MonitorID
}

func NewGLFWSource(reg *Registry) *GLFWSource {
	s := &GLFWSource{
		reg:    reg,
		ids:    map[*glfw.Monitor]MonitorID{},
		nextID: 1,
	}

	for _, m := range glfw.GetMonitors() {
		s.attach(m)
	}

	if primary := glfw.GetPrimaryMonitor(); primary != nil {
		reg.SetPrimary(s.idOf(primary))
	}

	glfw.SetMonitorCallback(func(m *glfw.Monitor, event glfw.PeripheralEvent) {
		switch event {
		case glfw.Connected:
			s.attach(m)
		case glfw.Disconnected:
			s.detach(m)
		}
	})

	return s
}

// Resolve assigns the window to the monitor containing its center point and
// returns that monitor. Call after moves and resizes; the registry dedupes
// no-op reassignments.
func (s *GLFWSource) Resolve(w WindowID, win *glfw.Window) MonitorID {
	wx, wy := win.GetPos()
	ww, wh := win.GetSize()
	cx, cy := wx+ww/2, wy+wh/2

	for _, m := range glfw.GetMonitors() {
		mx, my := m.GetPos()
		mode := m.GetVideoMode()
		if mode == nil {
			continue
		}

		if cx >= mx && cx < mx+mode.Width && cy >= my && cy < my+mode.Height {
			id := s.idOf(m)
			s.reg.AttachWindow(w, id)
			return id
		}
	}

	// off-screen or mid-disconnect: fall back to the primary monitor
	id := s.reg.Primary()
	s.reg.AttachWindow(w, id)
	return id
}

func (s *GLFWSource) attach(m *glfw.Monitor) {
	id := s.idOf(m)

	s.reg.AddMonitor(Monitor{
		ID:              id,
		Name:            m.GetName(),
		RefreshInterval: refreshIntervalOf(m),
	})
}

func (s *GLFWSource) detach(m *glfw.Monitor) {
	s.mu.Lock()
	id, ok := s.ids[m]
	delete(s.ids, m)
	s.mu.Unlock()

	if ok {
		s.reg.RemoveMonitor(id)
	}
}

func (s *GLFWSource) idOf(m *glfw.Monitor) MonitorID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ids[m]
	if !ok {
		id = s.nextID
		s.nextID++
		s.ids[m] = id
	}

	return id
}

func refreshIntervalOf(m *glfw.Monitor) time.Duration {
	mode := m.GetVideoMode()
	if mode == nil || mode.RefreshRate <= 0 {
		slog.Warn("Monitor reports no refresh rate", slog.String("name", m.GetName()))
		return DefaultRefreshInterval
	}

	return time.Second / time.Duration(mode.RefreshRate)
}
