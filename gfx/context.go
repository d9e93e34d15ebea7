// Package gfx is the webgpu glue: one device and queue shared by all
// windows, one configured surface per window, and a recorder that turns
// draw calls into submit-ready command buffers.
package gfx

import (
	"fmt"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

// Context holds the process wide webgpu state. Unlike a single window
// setup the instance is kept alive, new windows derive their surfaces
// from it for as long as the process runs.
type Context struct {
	*wgpu.Device
	*wgpu.Queue
	Adapter *wgpu.Adapter

	instance *wgpu.Instance
}

// New creates the shared device. The descriptor of the first window is
// used to pick a compatible adapter; its surface is returned alongside the
// context.
func New(sd *wgpu.SurfaceDescriptor) (ctx *Context, first *wgpu.Surface, err error) {
	defer func() {
		if err != nil && ctx != nil {
			ctx.Release()
			ctx = nil
		}
	}()

	ctx = &Context{}
	ctx.instance = wgpu.CreateInstance(nil)

	first = ctx.instance.CreateSurface(sd)

	ctx.Adapter, err = ctx.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    first,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("request adapter: %w", err)
	}

	ctx.Device, err = ctx.Adapter.RequestDevice(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("request device: %w", err)
	}

	ctx.Queue = ctx.Device.GetQueue()

	return ctx, first, nil
}

// CreateSurface derives a surface for another window from the live
// instance.
func (c *Context) CreateSurface(sd *wgpu.SurfaceDescriptor) *wgpu.Surface {
	return c.instance.CreateSurface(sd)
}

func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
		c.Queue = nil
	}

	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}

	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}

	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
