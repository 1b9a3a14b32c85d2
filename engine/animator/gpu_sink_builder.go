package animator

// GPUSinkBuilderOption is a functional option for configuring a GPUSink during construction.
type GPUSinkBuilderOption func(*gpuSink)

// WithGPULabel sets the label prefix of the device and buffer.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - GPUSinkBuilderOption: a function that applies the label option to a GPU sink
func WithGPULabel(label string) GPUSinkBuilderOption {
	return func(g *gpuSink) {
		g.label = label
	}
}

// WithForceFallbackAdapter requests the software fallback adapter, for machines without a GPU.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - GPUSinkBuilderOption: a function that applies the fallback option to a GPU sink
func WithForceFallbackAdapter(force bool) GPUSinkBuilderOption {
	return func(g *gpuSink) {
		g.forceFallbackAdapter = force
	}
}
