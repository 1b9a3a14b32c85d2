// Package viewer presents blended skeletons as colored bone lines on a WebGPU window surface.
package viewer

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by Present once Release has been called.
var ErrReleased = errors.New("viewer: released")

const lineShader = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) color: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

// Target is a window the viewer can present into.
type Target interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// viewer is the implementation of the Viewer interface.
type viewer struct {
	mu *sync.Mutex

	label                string
	scale                float32
	baseline             float32
	clearColor           wgpu.Color
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool

	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceFormat wgpu.TextureFormat
	shader        *wgpu.ShaderModule
	layout        *wgpu.PipelineLayout
	pipeline      *wgpu.RenderPipeline

	vertexBuffer   *wgpu.Buffer
	vertexCapacity uint64
	vertices       []float32

	frames uint64
}

// Viewer draws one frame of bone lines per Present call.
// Present must run on the thread that owns the window.
type Viewer interface {
	// Present clears the surface, draws every figure in its own column and presents the frame.
	//
	// Parameters:
	//   - figures: the skeletons to draw, left to right
	//
	// Returns:
	//   - error: ErrReleased, or an error if the frame could not be acquired or submitted
	Present(figures []Figure) error

	// Frames returns the number of frames presented.
	Frames() uint64

	// Release frees every GPU resource. Safe to call multiple times.
	Release()
}

var _ Viewer = &viewer{}

// NewViewer creates a surface on the target window, configures it and builds the line pipeline.
// The calling OS thread is locked.
//
// Parameters:
//   - target: the window to present into
//   - options: variadic list of ViewerBuilderOption functions
//
// Returns:
//   - Viewer: the new viewer
//   - error: an error if the surface, adapter, device or pipeline could not be created
func NewViewer(target Target, options ...ViewerBuilderOption) (Viewer, error) {
	runtime.LockOSThread()
	v := &viewer{
		mu:          &sync.Mutex{},
		label:       "Skeleton Viewer",
		scale:       0.35,
		baseline:    -0.9,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(v)
	}

	desc := target.SurfaceDescriptor()
	if desc == nil {
		return nil, fmt.Errorf("viewer: window has no surface")
	}
	v.instance = wgpu.CreateInstance(nil)
	v.surface = v.instance.CreateSurface(desc)

	a, err := v.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: v.forceFallbackAdapter,
		CompatibleSurface:    v.surface,
	})
	if err != nil {
		v.Release()
		return nil, fmt.Errorf("viewer: request adapter: %w", err)
	}
	v.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: v.label + " Device",
	})
	if err != nil {
		v.Release()
		return nil, fmt.Errorf("viewer: request device: %w", err)
	}
	v.device = d
	v.queue = d.GetQueue()

	capabilities := v.surface.GetCapabilities(v.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		v.Release()
		return nil, fmt.Errorf("viewer: surface reports no formats")
	}
	v.surfaceFormat = capabilities.Formats[0]
	v.surface.Configure(v.adapter, v.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      v.surfaceFormat,
		Width:       uint32(target.Width()),
		Height:      uint32(target.Height()),
		PresentMode: v.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if err := v.createPipeline(); err != nil {
		v.Release()
		return nil, err
	}
	return v, nil
}

// createPipeline compiles the line shader and builds a line-list pipeline with no bind groups.
func (v *viewer) createPipeline() error {
	s, err := v.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: v.label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: lineShader,
		},
	})
	if err != nil {
		return fmt.Errorf("viewer: create shader module: %w", err)
	}
	v.shader = s

	layout, err := v.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: v.label + " Pipeline Layout",
	})
	if err != nil {
		return fmt.Errorf("viewer: create pipeline layout: %w", err)
	}
	v.layout = layout

	created, err := v.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  v.label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     s,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: floatsPerVertex * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     s,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    v.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("viewer: create render pipeline: %w", err)
	}
	v.pipeline = created
	return nil
}

// ensureVertexBuffer grows the vertex buffer to hold at least size bytes.
func (v *viewer) ensureVertexBuffer(size uint64) error {
	if v.vertexBuffer != nil && size <= v.vertexCapacity {
		return nil
	}
	capacity := max(v.vertexCapacity*2, size, 4096)
	buf, err := v.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            v.label + " Vertex Buffer",
		Size:             capacity,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("viewer: create vertex buffer: %w", err)
	}
	if v.vertexBuffer != nil {
		v.vertexBuffer.Release()
	}
	v.vertexBuffer = buf
	v.vertexCapacity = capacity
	return nil
}

func (v *viewer) Present(figures []Figure) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pipeline == nil {
		return ErrReleased
	}

	v.vertices = v.vertices[:0]
	for i, origin := range Columns(len(figures)) {
		v.vertices = AppendSegments(v.vertices, figures[i], origin, v.scale, v.baseline)
	}
	vertexCount := uint32(len(v.vertices) / floatsPerVertex)
	if vertexCount > 0 {
		data := common.SliceToBytes(v.vertices)
		if err := v.ensureVertexBuffer(uint64(len(data))); err != nil {
			return err
		}
		v.queue.WriteBuffer(v.vertexBuffer, 0, data)
	}

	surfaceTexture, err := v.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("viewer: acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("viewer: create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := v.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("viewer: create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: v.clearColor,
			},
		},
	})
	if vertexCount > 0 {
		pass.SetPipeline(v.pipeline)
		pass.SetVertexBuffer(0, v.vertexBuffer, 0, wgpu.WholeSize)
		pass.Draw(vertexCount, 1, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("viewer: finish frame: %w", err)
	}
	v.queue.Submit(commandBuffer)
	commandBuffer.Release()

	v.surface.Present()
	v.frames++
	return nil
}

func (v *viewer) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

func (v *viewer) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.vertexBuffer != nil {
		v.vertexBuffer.Release()
		v.vertexBuffer = nil
	}
	if v.pipeline != nil {
		v.pipeline.Release()
		v.pipeline = nil
	}
	if v.layout != nil {
		v.layout.Release()
		v.layout = nil
	}
	if v.shader != nil {
		v.shader.Release()
		v.shader = nil
	}
	if v.queue != nil {
		v.queue.Release()
		v.queue = nil
	}
	if v.device != nil {
		v.device.Release()
		v.device = nil
	}
	if v.adapter != nil {
		v.adapter.Release()
		v.adapter = nil
	}
	if v.surface != nil {
		v.surface.Release()
		v.surface = nil
	}
	if v.instance != nil {
		v.instance.Release()
		v.instance = nil
		log.Printf("[%s] released after %d frames", v.label, v.frames)
	}
}
