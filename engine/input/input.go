// Package input maps keyboard state onto character controls: held keys move the control
// weight, pressed keys trigger overlays or reset the weight.
package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// Controllable is the control surface a keyboard drives. game_object.GameObject satisfies it.
type Controllable interface {
	Name() string
	Weight() float32
	SetWeight(w float32)
	OverlayNames() []string
	TriggerOverlay(name string) bool
}

// Controls translates GLFW key codes into Controllable actions.
//
// KeyDown and KeyUp may be called from the window goroutine while Update runs on the tick goroutine.
// Held keys are polled in Update so the weight moves at a fixed rate regardless of key repeat:
//   - Up, W, Right raise the weight
//   - Down, S, Left lower it
//
// Presses act immediately:
//   - Space triggers the first overlay (sorted by name)
//   - 1 through 9 trigger the overlay at that position
//   - 0 and R reset the weight to the configured rest value
type Controls interface {
	// KeyDown records a key press. Repeats of a held key are ignored.
	//
	// Parameters:
	//   - keyCode: the GLFW key code
	KeyDown(keyCode uint32)

	// KeyUp records a key release.
	//
	// Parameters:
	//   - keyCode: the GLFW key code
	KeyUp(keyCode uint32)

	// Update applies held-key weight changes for one tick.
	//
	// Parameters:
	//   - deltaTime: elapsed seconds since the previous Update
	Update(deltaTime float32)

	// Targets returns the controlled characters.
	//
	// Returns:
	//   - []Controllable: a copy of the target list
	Targets() []Controllable

	// AddTarget appends a character to the controlled set.
	//
	// Parameters:
	//   - target: the character to drive
	AddTarget(target Controllable)

	// Rate returns the weight change per second while a raise or lower key is held.
	//
	// Returns:
	//   - float32: the rate
	Rate() float32

	// Triggered returns how many overlay triggers were accepted since creation.
	//
	// Returns:
	//   - int: the accepted trigger count
	Triggered() int
}

type controls struct {
	mu        sync.Mutex
	held      map[uint32]bool
	targets   []Controllable
	rate      float32
	rest      float32
	triggered int
}

var _ Controls = &controls{}

// NewControls creates keyboard controls. The default rate is 0.5 per second and the rest weight is 0.
//
// Parameters:
//   - options: variadic list of ControlsBuilderOption functions
//
// Returns:
//   - Controls: the controls
func NewControls(options ...ControlsBuilderOption) Controls {
	c := &controls{
		held: make(map[uint32]bool),
		rate: 0.5,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controls) KeyDown(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[keyCode] {
		return
	}
	c.held[keyCode] = true

	switch keyCode {
	case common.KeySpace:
		c.triggerIndex(0)
	case common.Key0, common.KeyR:
		for _, t := range c.targets {
			t.SetWeight(c.rest)
		}
	default:
		if keyCode >= common.Key1 && keyCode <= common.Key9 {
			c.triggerIndex(int(keyCode - common.Key1))
		}
	}
}

// triggerIndex fires the i-th overlay on every target that has one. Caller holds mu.
func (c *controls) triggerIndex(i int) {
	for _, t := range c.targets {
		names := t.OverlayNames()
		if i >= len(names) {
			continue
		}
		if t.TriggerOverlay(names[i]) {
			c.triggered++
		}
	}
}

func (c *controls) KeyUp(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, keyCode)
}

func (c *controls) Update(deltaTime float32) {
	if deltaTime <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var dir float32
	if c.held[common.KeyUp] || c.held[common.KeyW] || c.held[common.KeyRight] {
		dir++
	}
	if c.held[common.KeyDown] || c.held[common.KeyS] || c.held[common.KeyLeft] {
		dir--
	}
	if dir == 0 {
		return
	}
	step := dir * c.rate * deltaTime
	for _, t := range c.targets {
		t.SetWeight(common.Clamp01(common.Clamp01(t.Weight()) + step))
	}
}

func (c *controls) Targets() []Controllable {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Controllable, len(c.targets))
	copy(out, c.targets)
	return out
}

func (c *controls) AddTarget(target Controllable) {
	if target == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, target)
}

func (c *controls) Rate() float32 {
	return c.rate
}

func (c *controls) Triggered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggered
}
