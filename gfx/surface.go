package gfx

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/maple/render"
)

// Surface is one window's configured presentation surface. Acquire,
// Present, Recreate and Release run on the window's goroutine; Resize may
// be called from the event thread and takes effect on the next Recreate.
type Surface struct {
	ctx     *Context
	surface *wgpu.Surface
	config  *wgpu.SurfaceConfiguration

	// width<<32 | height, written by the event thread
	pending atomic.Uint64
}

func NewSurface(ctx *Context, surface *wgpu.Surface, width, height uint32) *Surface {
	caps := surface.GetCapabilities(ctx.Adapter)
	slog.Debug("Available surface formats", slog.Any("formats", caps.Formats))

	s := &Surface{
		ctx:     ctx,
		surface: surface,
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      wgpu.TextureFormatBGRA8Unorm,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],

			// try to reduce input latency
			DesiredMaximumFrameLatency: 1,
		},
	}

	s.Resize(width, height)
	s.configure()

	return s
}

func (s *Surface) Format() wgpu.TextureFormat {
	return s.config.Format
}

// Size returns the currently configured extent.
func (s *Surface) Size() (width, height uint32) {
	return s.config.Width, s.config.Height
}

// Resize records a new framebuffer size. Safe to call from the event
// thread; the surface is reconfigured on the next Recreate.
func (s *Surface) Resize(width, height uint32) {
	s.pending.Store(uint64(width)<<32 | uint64(height))
}

func (s *Surface) configure() {
	packed := s.pending.Load()
	s.config.Width = uint32(packed >> 32)
	s.config.Height = uint32(packed)

	s.surface.Configure(s.ctx.Device, s.config)
}

// Recreate reconfigures the surface at the most recently recorded size.
func (s *Surface) Recreate() error {
	s.configure()

	slog.Debug("Surface reconfigured",
		slog.Int("width", int(s.config.Width)),
		slog.Int("height", int(s.config.Height)),
	)

	return nil
}

// Acquire grabs the next presentable texture and a view onto it. A surface
// that no longer matches the window, typically right after a resize, is
// reported as render.ErrSurfaceStale.
func (s *Surface) Acquire() (*wgpu.Texture, *wgpu.TextureView, error) {
	if s.pending.Load() != uint64(s.config.Width)<<32|uint64(s.config.Height) {
		return nil, nil, fmt.Errorf("surface size changed: %w", render.ErrSurfaceStale)
	}

	texture, err := s.surface.GetCurrentTexture()
	if err != nil {
		// acquisition failures are recovered by reconfiguring
		return nil, nil, fmt.Errorf("get current texture: %v: %w", err, render.ErrSurfaceStale)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, nil, fmt.Errorf("create surface view: %w", err)
	}

	return texture, view, nil
}

// Present shows the most recently acquired texture.
func (s *Surface) Present() {
	s.surface.Present()
}

func (s *Surface) Release() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}
