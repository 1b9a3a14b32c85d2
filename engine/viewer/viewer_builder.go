package viewer

import "github.com/cogentcore/webgpu/wgpu"

// ViewerBuilderOption is a functional option for configuring a Viewer during construction.
type ViewerBuilderOption func(*viewer)

// WithLabel sets the label prefix of the device, shader, pipeline and buffers.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - ViewerBuilderOption: a function that applies the label option to a viewer
func WithLabel(label string) ViewerBuilderOption {
	return func(v *viewer) {
		v.label = label
	}
}

// WithScale sets how many NDC units one model unit spans.
// Non-positive values are ignored.
//
// Parameters:
//   - scale: NDC units per model unit
//
// Returns:
//   - ViewerBuilderOption: a function that applies the scale option to a viewer
func WithScale(scale float32) ViewerBuilderOption {
	return func(v *viewer) {
		if scale > 0 {
			v.scale = scale
		}
	}
}

// WithBaseline sets the vertical NDC position of the ground plane.
//
// Parameters:
//   - baseline: NDC y of model height zero, in [-1, 1]
//
// Returns:
//   - ViewerBuilderOption: a function that applies the baseline option to a viewer
func WithBaseline(baseline float32) ViewerBuilderOption {
	return func(v *viewer) {
		v.baseline = baseline
	}
}

// WithClearColor sets the background color.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - ViewerBuilderOption: a function that applies the clear color option to a viewer
func WithClearColor(r, g, b, a float64) ViewerBuilderOption {
	return func(v *viewer) {
		v.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithVSync selects FIFO presentation when enabled and immediate presentation otherwise.
//
// Parameters:
//   - enabled: true to wait for vertical blank
//
// Returns:
//   - ViewerBuilderOption: a function that applies the present mode option to a viewer
func WithVSync(enabled bool) ViewerBuilderOption {
	return func(v *viewer) {
		if enabled {
			v.presentMode = wgpu.PresentModeFifo
		} else {
			v.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - ViewerBuilderOption: a function that applies the fallback option to a viewer
func WithForceFallbackAdapter(force bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.forceFallbackAdapter = force
	}
}
