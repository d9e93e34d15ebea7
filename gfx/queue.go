package gfx

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/maple/render"
)

// Frame is one recorded frame: the command buffer to submit plus the
// surface texture it renders to. It travels opaquely through the render
// channel and is consumed by the queue.
type Frame struct {
	Surface  *Surface
	Texture  *wgpu.Texture
	View     *wgpu.TextureView
	Commands *wgpu.CommandBuffer
}

func (f *Frame) release() {
	if f.Commands != nil {
		f.Commands.Release()
		f.Commands = nil
	}
	if f.View != nil {
		f.View.Release()
		f.View = nil
	}
	if f.Texture != nil {
		f.Texture.Release()
		f.Texture = nil
	}
}

// GPUQueue submits recorded frames to the shared device queue and
// presents them. It is driven by a single goroutine, the arbiter.
type GPUQueue struct {
	queue *wgpu.Queue
}

func NewQueue(ctx *Context) *GPUQueue {
	return &GPUQueue{queue: ctx.Queue}
}

func (q *GPUQueue) Submit(req *render.Request) error {
	frame, ok := req.Commands.(*Frame)
	if !ok {
		return fmt.Errorf("unexpected frame payload %T", req.Commands)
	}

	defer frame.release()

	q.queue.Submit(frame.Commands)
	frame.Surface.Present()

	return nil
}
