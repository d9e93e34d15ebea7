package gfx

import (
	_ "embed"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/maple/display"
	"github.com/oliverbestmann/maple/glm"
	"github.com/oliverbestmann/maple/render"
)

//go:embed rect.wgsl
var rectShaderCode string

// maximum number of vertices to record in one frame
const maxVertices = 64 * 1024

// Recorder collects draw calls for one window and turns them into a
// render request. Used only from the window's goroutine.
type Recorder struct {
	ctx     *Context
	surface *Surface
	window  display.WindowID

	pipelineCache *PipelineCache[rectPipelineConfig]

	bufVertices *wgpu.Buffer
	bufIndices  *wgpu.Buffer
	bufParams   *wgpu.Buffer

	vertices []Vertex
	indices  []uint32
	clear    Color
}

func NewRecorder(ctx *Context, surface *Surface, window display.WindowID) (*Recorder, error) {
	bufVertices, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Recorder.Vertices",
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(Vertex{})) * maxVertices,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	bufIndices, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Recorder.Indices",
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(uint32(0))) * maxVertices * 3 / 2,
	})
	if err != nil {
		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	bufParams, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Recorder.Params",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(Params{})),
	})
	if err != nil {
		return nil, fmt.Errorf("create params uniform: %w", err)
	}

	r := &Recorder{
		ctx:         ctx,
		surface:     surface,
		window:      window,
		bufVertices: bufVertices,
		bufIndices:  bufIndices,
		bufParams:   bufParams,
		clear:       ColorBlack,
	}

	r.pipelineCache = NewPipelineCache[rectPipelineConfig](ctx)

	return r, nil
}

// Clear sets the background color of the frame being recorded.
func (r *Recorder) Clear(color Color) {
	r.clear = color
}

// Rect records a filled rectangle.
func (r *Recorder) Rect(rect Rect, color Color) {
	base := uint32(len(r.vertices))

	corners := rect.Vertices(color)
	r.vertices = append(r.vertices, corners[:]...)

	for _, idx := range RectIndices {
		r.indices = append(r.indices, base+idx)
	}
}

// Triangles records a raw triangle list.
func (r *Recorder) Triangles(vertices []Vertex) {
	base := uint32(len(r.vertices))

	r.vertices = append(r.vertices, vertices...)
	for i := range uint32(len(vertices)) {
		r.indices = append(r.indices, base+i)
	}
}

// Polygon records a convex polygon outline as a triangle fan.
func (r *Recorder) Polygon(points []glm.Vec2f, color Color) {
	r.Triangles(TriangulateFan(points, color))
}

// Record acquires the next surface texture, encodes the collected draw
// calls and wraps everything into a request for the arbiter. The recorded
// state is cleared, a stale surface keeps it for the retry.
func (r *Recorder) Record() (*render.Request, error) {
	if len(r.vertices) > maxVertices {
		return nil, fmt.Errorf("frame exceeds %d vertices", maxVertices)
	}

	texture, view, err := r.surface.Acquire()
	if err != nil {
		return nil, err
	}

	commands, err := r.encode(view)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}

	r.reset()

	return &render.Request{
		Window: r.window,
		Commands: &Frame{
			Surface:  r.surface,
			Texture:  texture,
			View:     view,
			Commands: commands,
		},
	}, nil
}

func (r *Recorder) encode(view *wgpu.TextureView) (*wgpu.CommandBuffer, error) {
	queue := r.ctx.Queue

	if len(r.vertices) > 0 {
		if err := queue.WriteBuffer(r.bufVertices, 0, wgpu.ToBytes(r.vertices)); err != nil {
			return nil, fmt.Errorf("update vertex buffer: %w", err)
		}
		if err := queue.WriteBuffer(r.bufIndices, 0, wgpu.ToBytes(r.indices)); err != nil {
			return nil, fmt.Errorf("update index buffer: %w", err)
		}
	}

	width, height := r.surface.Size()
	params := Params{Scale: ScaleFor(width, height)}
	if err := queue.WriteBuffer(r.bufParams, 0, AsByteSlice(&params)); err != nil {
		return nil, fmt.Errorf("update params uniform: %w", err)
	}

	pipeline, err := r.pipelineCache.Get(rectPipelineConfig{
		TargetFormat: r.surface.Format(),
	})
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}

	bindGroupLayout := pipeline.GetBindGroupLayout(0)

	bindGroup, err := r.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  r.bufParams,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	defer bindGroup.Release()

	encoder, err := r.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RecorderPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(r.clear[0]),
					G: float64(r.clear[1]),
					B: float64(r.clear[2]),
					A: float64(r.clear[3]),
				},
			},
		},
	})

	defer func() {
		if pass != nil {
			pass.Release()
		}
	}()

	if len(r.indices) > 0 {
		pass.SetPipeline(pipeline.Pipeline)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.SetVertexBuffer(0, r.bufVertices, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(r.bufIndices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(len(r.indices)), 1, 0, 0, 0)
	}

	if err := pass.End(); err != nil {
		return nil, err
	}

	// must release pass before finishing the encoder
	pass.Release()
	pass = nil

	return encoder.Finish(nil)
}

func (r *Recorder) reset() {
	r.vertices = r.vertices[:0]
	r.indices = r.indices[:0]
	r.clear = ColorBlack
}

type rectPipelineConfig struct {
	TargetFormat wgpu.TextureFormat
}

func (conf rectPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info("Create render pipeline", slog.Any("format", conf.TargetFormat))

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      "Rect.ShaderSource",
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: rectShaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	defer shader.Release()

	return dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("Rect.%s", conf.TargetFormat),
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x2,
							Offset:         uint64(unsafe.Offsetof(Vertex{}.Position)),
							ShaderLocation: 0,
						},
						{
							Format:         wgpu.VertexFormatFloat32x4,
							Offset:         uint64(unsafe.Offsetof(Vertex{}.Color)),
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    conf.TargetFormat,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
}
