// Package engine drives scenes of blended characters from a fixed-rate tick loop.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/profiler"
	"github.com/Carmen-Shannon/oxy-blend/engine/scene"
	"github.com/Carmen-Shannon/oxy-blend/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick goroutine and the optional window message loop.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilerInterval time.Duration
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func()

	scenesMu sync.RWMutex
	scenes   map[int]scene.Scene

	ticks atomic.Uint64
}

// Engine is the main entry point for the engine.
// It owns the tick loop that advances every active scene and, when configured, the window.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the profiler used when profiling is enabled.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - tps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// TickRate returns the interval between ticks.
	//
	// Returns:
	//   - time.Duration: the tick interval
	TickRate() time.Duration

	// SetTickCallback registers the function called at the start of each tick, before any scene updates.
	// Use this for input processing and control changes.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called on the window's goroutine once per
	// message-loop iteration while the engine runs. Use this for presentation.
	// Never called without a window.
	//
	// Parameters:
	//   - callback: the function to call
	SetFrameCallback(callback func())

	// AddScene registers a scene at the given key. Scenes update in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key (lower updates first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key. The scene is not released.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs one tick synchronously with the given delta time.
	// The tick callback runs first, then every active scene in ascending key order.
	//
	// Parameters:
	//   - deltaTime: elapsed seconds for this tick
	//
	// Returns:
	//   - error: the joined scene errors, or nil
	Step(deltaTime float32) error

	// Ticks returns how many ticks have run.
	//
	// Returns:
	//   - uint64: the tick count
	Ticks() uint64

	// Run starts the tick loop and blocks until the window closes or Quit is called.
	// Without a window, Run blocks on Quit alone.
	Run()

	// Quit signals the tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Done returns a channel closed once Quit has been signalled.
	//
	// Returns:
	//   - <-chan struct{}: the quit channel
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The profiler reports the scene object count and the number of characters playing an overlay.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profilerInterval: time.Second,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(
		profiler.WithInterval(e.profilerInterval),
		profiler.WithGauge("Objects", e.objectCount),
		profiler.WithGauge("Overlays", e.activeOverlayCount),
	)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.wg.Add(1)
	go e.handleEngine()

	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				_ = e.window.Close()
				return
			default:
			}
			if e.frameCallback != nil {
				e.frameCallback()
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}

	e.wg.Wait()
	e.running.Store(false)
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel and exits when the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] tick goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.TickRate())
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			// Errors are already logged per object by the scene.
			_ = e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

func (e *engine) Step(deltaTime float32) error {
	if e.tickCallback != nil {
		e.tickCallback(deltaTime)
	}

	var errs []error
	for _, k := range e.sortedKeys() {
		s := e.Scene(k)
		if s == nil || !s.Active() {
			continue
		}
		if err := s.Update(deltaTime); err != nil {
			errs = append(errs, fmt.Errorf("scene %d (%s): %w", k, s.Name(), err))
		}
	}

	e.ticks.Add(1)
	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return errors.Join(errs...)
}

// sortedKeys returns the registered scene keys in ascending order.
func (e *engine) sortedKeys() []int {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (e *engine) objectCount() int {
	n := 0
	for _, s := range e.Scenes() {
		n += s.Count()
	}
	return n
}

func (e *engine) activeOverlayCount() int {
	n := 0
	for _, s := range e.Scenes() {
		for _, obj := range s.Objects() {
			if c := obj.Controller(); c != nil && c.OverlayActive() {
				n++
			}
		}
	}
	return n
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect on the next loop iteration.
func (e *engine) SetTickRate(tps float64) {
	if tps <= 0 {
		tps = 60
	}
	newRate := time.Duration(float64(time.Second) / tps)

	e.scenesMu.Lock()
	e.engineTickRate = newRate
	e.scenesMu.Unlock()

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	}
}

func (e *engine) TickRate() time.Duration {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.engineTickRate
}

// SetTickCallback registers the function called at the start of each tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetFrameCallback registers the function called once per window message-loop iteration.
func (e *engine) SetFrameCallback(callback func()) {
	e.frameCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
