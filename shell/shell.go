//go:build !js

// Package shell owns the main thread: glfw setup, window creation, the
// event pump, and the wiring between windows, the monitor registry and
// the render arbiter.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/profile"

	"github.com/oliverbestmann/maple/display"
	"github.com/oliverbestmann/maple/gfx"
	"github.com/oliverbestmann/maple/render"
	"github.com/oliverbestmann/maple/window"
)

func init() {
	// glfw must stay on the thread that called Init
	runtime.LockOSThread()
}

type Options struct {
	// Profile writes a CPU profile for the lifetime of the shell.
	Profile bool
}

// Shell ties the pieces together. Create it, open windows, then Run until
// the last window closes.
type Shell struct {
	registry *display.Registry
	source   *display.GLFWSource
	channel  *render.Channel
	arbiter  *render.Arbiter
	manager  *window.Manager

	ctx    *gfx.Context
	cancel context.CancelFunc

	prof  interface{ Stop() }
	bound []*boundWindow
}

type boundWindow struct {
	win   *glfw.Window
	actor *window.Actor
}

func New(opts Options) (*Shell, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	s := &Shell{}

	if opts.Profile {
		s.prof = profile.Start(profile.CPUProfile)
	}

	s.registry = display.NewRegistry()
	s.source = display.NewGLFWSource(s.registry)
	s.channel = render.NewChannel()
	s.manager = window.NewManager(s.registry, s.channel)

	return s, nil
}

// Registry exposes the monitor registry, e.g. for subscriptions.
func (s *Shell) Registry() *display.Registry {
	return s.registry
}

type WindowOptions struct {
	Title  string
	Width  int
	Height int

	// Cadence is the redraw interval in refresh intervals, zero means 1.
	Cadence int

	// Animate redraws continuously instead of on input.
	Animate bool

	// Draw records the window content. Called on the window's goroutine
	// once per frame.
	Draw func(*gfx.Recorder)

	OnInput func(window.InputEvent)
}

// OpenWindow creates a native window, binds a surface and a recorder to
// it and spawns its actor. The first window also brings up the shared
// device and the arbiter.
func (s *Shell) OpenWindow(opts WindowOptions) (*window.Actor, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	sd := wgpuglfw.GetSurfaceDescriptor(win)

	var surface *gfx.Surface

	fbWidth, fbHeight := win.GetFramebufferSize()

	if s.ctx == nil {
		ctx, first, err := gfx.New(sd)
		if err != nil {
			win.Destroy()
			return nil, fmt.Errorf("create device: %w", err)
		}
		s.ctx = ctx

		runCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.arbiter = render.NewArbiter(gfx.NewQueue(ctx), s.channel)
		go s.arbiter.Run(runCtx)

		surface = gfx.NewSurface(ctx, first, uint32(fbWidth), uint32(fbHeight))
	} else {
		surface = gfx.NewSurface(s.ctx, s.ctx.CreateSurface(sd), uint32(fbWidth), uint32(fbHeight))
	}

	id := s.manager.NextID()
	s.source.Resolve(id, win)

	recorder, err := gfx.NewRecorder(s.ctx, surface, id)
	if err != nil {
		surface.Release()
		win.Destroy()
		return nil, fmt.Errorf("create recorder: %w", err)
	}

	actor := s.manager.Spawn(window.Options{
		ID:      id,
		Title:   opts.Title,
		Surface: surface,
		Cadence: opts.Cadence,
		Animate: opts.Animate,
		OnInput: opts.OnInput,
		Record: func() (*render.Request, error) {
			if opts.Draw != nil {
				opts.Draw(recorder)
			}
			return recorder.Record()
		},
	})

	s.bindCallbacks(win, id, surface, actor)
	s.bound = append(s.bound, &boundWindow{win: win, actor: actor})

	return actor, nil
}

func (s *Shell) bindCallbacks(win *glfw.Window, id display.WindowID, surface *gfx.Surface, actor *window.Actor) {
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		surface.Resize(uint32(width), uint32(height))
		actor.Deliver(ResizeEvent{Width: uint32(width), Height: uint32(height)})
	})

	win.SetPosCallback(func(_ *glfw.Window, _, _ int) {
		s.source.Resolve(id, win)
	})

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		actor.Deliver(KeyEvent{Key: key, Action: action, Mods: mods})
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		actor.Deliver(MouseButtonEvent{Button: btn, Action: action})
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		actor.Deliver(CursorEvent{X: float32(x), Y: float32(y)})
	})
}

// Run pumps native events until every window is gone, then waits for the
// actors to finish. The returned error joins the failures of all windows
// that were closed by a device error.
func (s *Shell) Run() error {
	for len(s.bound) > 0 {
		glfw.WaitEventsTimeout(0.1)

		remaining := s.bound[:0]
		for _, b := range s.bound {
			if b.win.ShouldClose() {
				b.actor.Close()
			}

			select {
			case <-b.actor.Done():
				b.win.Destroy()
			default:
				remaining = append(remaining, b)
			}
		}
		s.bound = remaining
	}

	return s.manager.WaitIdle()
}

// Shutdown releases the device, stops the arbiter and tears glfw down.
func (s *Shell) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}

	if s.ctx != nil {
		s.ctx.Release()
		s.ctx = nil
	}

	if s.prof != nil {
		s.prof.Stop()
	}

	slog.Info("Shell terminated")
	glfw.Terminate()
}
