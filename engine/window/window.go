// Package window opens a GLFW window whose keyboard drives the blend controls, whose
// title shows the live blend state and whose surface shows the blended skeletons.
package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a desktop window that delivers keyboard input, displays a status title and
// exposes a surface descriptor so a WebGPU surface can present into it.
type Window interface {
	// SetUpdateCallback registers a function called once per message-loop iteration.
	//
	// Parameters:
	//   - callback: the function to call
	SetUpdateCallback(callback func())

	// SetKeyDownCallback registers the key press and key repeat handler.
	//
	// Parameters:
	//   - callback: receives the GLFW key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback registers the key release handler.
	//
	// Parameters:
	//   - callback: receives the GLFW key code (see common.Key*)
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetTitle queues a new window title. Safe from any goroutine; applied on the message loop.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// IsRunning reports whether the window is open and has not been asked to close.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error

	// ProcessMessages runs the message loop on the calling goroutine until the window closes.
	ProcessMessages()

	// Width returns the window width in pixels.
	Width() int

	// Height returns the window height in pixels.
	Height() int

	// SurfaceDescriptor returns the platform surface descriptor for WebGPU surface creation.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

type engineWindow struct {
	title string

	width  int
	height int

	// internalWindow holds the platform-specific window state.
	internalWindow any

	titleMu      sync.Mutex
	pendingTitle string

	onUpdate  func()
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a window. Panics if the platform window cannot be created.
// Must be called from the main goroutine; the calling OS thread is locked.
//
// Parameters:
//   - options: variadic list of WindowBuilderOption functions
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "oxy-blend",
		width:  480,
		height: 120,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	w.pendingTitle = title
}

// takeTitle returns and clears the queued title.
func (w *engineWindow) takeTitle() (string, bool) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	if w.pendingTitle == "" || w.pendingTitle == w.title {
		return "", false
	}
	w.title = w.pendingTitle
	w.pendingTitle = ""
	return w.title, true
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		if title, ok := w.takeTitle(); ok {
			platformSetTitle(w, title)
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}
