package animator

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuSink is a PoseSink that uploads the skinning palette into a WebGPU storage buffer.
type gpuSink struct {
	mu *sync.Mutex

	label                string
	forceFallbackAdapter bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	buffer   *wgpu.Buffer

	size    uint64
	uploads uint64
}

// GPUSink is a PoseSink backed by a headless WebGPU device.
// The palette buffer has storage and copy-destination usage so a skinning pass can bind it directly.
type GPUSink interface {
	PoseSink

	// Buffer returns the storage buffer holding the palette.
	Buffer() *wgpu.Buffer

	// Device returns the device the buffer was created on.
	Device() *wgpu.Device

	// Size returns the buffer size in bytes.
	Size() uint64

	// Uploads returns the number of successful palette uploads.
	Uploads() uint64
}

var _ GPUSink = &gpuSink{}

// NewGPUSink requests a headless adapter and device and allocates a palette buffer sized for boneCount bones.
//
// Parameters:
//   - boneCount: the number of bones in the palette
//   - options: variadic list of GPUSinkBuilderOption functions
//
// Returns:
//   - GPUSink: the new sink
//   - error: an error if no adapter, device or buffer could be created
func NewGPUSink(boneCount int, options ...GPUSinkBuilderOption) (GPUSink, error) {
	if boneCount <= 0 {
		return nil, fmt.Errorf("gpu sink: bone count must be positive, got %d", boneCount)
	}
	g := &gpuSink{
		mu:    &sync.Mutex{},
		label: "Palette",
		size:  uint64(boneCount) * 16 * 4,
	}
	for _, opt := range options {
		opt(g)
	}

	g.instance = wgpu.CreateInstance(nil)
	a, err := g.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: g.forceFallbackAdapter,
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("gpu sink: request adapter: %w", err)
	}
	g.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: g.label + " Device",
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("gpu sink: request device: %w", err)
	}
	g.device = d
	g.queue = d.GetQueue()

	buf, err := d.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            g.label + " Buffer",
		Size:             g.size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("gpu sink: create buffer: %w", err)
	}
	g.buffer = buf
	return g, nil
}

func (g *gpuSink) WritePalette(palette []float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.buffer == nil {
		return fmt.Errorf("gpu sink %s: released", g.label)
	}
	data := common.SliceToBytes(palette)
	if uint64(len(data)) > g.size {
		return fmt.Errorf("gpu sink %s: palette is %d bytes, buffer holds %d", g.label, len(data), g.size)
	}
	// WriteBuffer copies the data before returning.
	g.queue.WriteBuffer(g.buffer, 0, data)
	g.uploads++
	return nil
}

func (g *gpuSink) Buffer() *wgpu.Buffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buffer
}

func (g *gpuSink) Device() *wgpu.Device {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.device
}

func (g *gpuSink) Size() uint64 {
	return g.size
}

func (g *gpuSink) Uploads() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uploads
}

func (g *gpuSink) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.buffer != nil {
		g.buffer.Release()
		g.buffer = nil
	}
	if g.queue != nil {
		g.queue.Release()
		g.queue = nil
	}
	if g.device != nil {
		g.device.Release()
		g.device = nil
	}
	if g.adapter != nil {
		g.adapter.Release()
		g.adapter = nil
	}
	if g.instance != nil {
		g.instance.Release()
		g.instance = nil
		log.Printf("[%s] GPU sink released after %d uploads", g.label, g.uploads)
	}
}
