package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/scene"
	"github.com/Carmen-Shannon/oxy-blend/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfilerInterval sets how often the profiler reports.
//
// Parameters:
//   - interval: the report interval (values <= 0 keep the 1 second default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if interval > 0 {
			e.profilerInterval = interval
		}
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - tps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		if tps <= 0 {
			tps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / tps)
	}
}

// WithTickCallback registers the function called at the start of each tick.
//
// Parameters:
//   - callback: receives the delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithFrameCallback registers the function called once per window message-loop iteration.
//
// Parameters:
//   - callback: the function to call on the window's goroutine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func()) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithWindow sets a window whose message loop Run drives on the calling goroutine.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given key during engine construction.
// Scenes update in ascending key order.
//
// Parameters:
//   - key: the ordering key (lower updates first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}
