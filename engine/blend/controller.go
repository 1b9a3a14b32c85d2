package blend

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/mixer"
	"github.com/Carmen-Shannon/oxy-blend/engine/transition"
)

// OverlayPhase identifies the stage of the current one-shot overlay.
type OverlayPhase int32

const (
	// OverlayIdle means no overlay is connected.
	OverlayIdle OverlayPhase = iota

	// OverlayBlendIn means the overlay weight is ramping from 0 to 1.
	OverlayBlendIn

	// OverlayHold means the overlay is at full weight waiting for its blend-out.
	OverlayHold

	// OverlayBlendOut means the overlay weight is ramping from 1 to 0.
	OverlayBlendOut
)

func (p OverlayPhase) String() string {
	switch p {
	case OverlayIdle:
		return "idle"
	case OverlayBlendIn:
		return "blend-in"
	case OverlayHold:
		return "hold"
	case OverlayBlendOut:
		return "blend-out"
	default:
		return "unknown"
	}
}

// OutputBinding is the consumer that samples the graph every frame.
// The controller calls Bind exactly once at construction and Unbind exactly once at teardown.
type OutputBinding interface {
	Bind(root mixer.Playable) error
	Unbind()
}

// controller is the implementation of the Controller interface.
type controller struct {
	name      string
	topology  Topology
	graph     Graph
	policy    WeightPolicy
	scheduler transition.Scheduler
	binding   OutputBinding
	fallback  clip.Pose
	weights   []float32

	rampIn, rampOut *transition.Ramp

	phase     atomic.Int32
	destroyed atomic.Bool
}

// Controller owns a character's blend graph and derives its mixer weights.
//
// Recompute maps the control value onto the locomotion mixer through the configured
// WeightPolicy. PlayOverlay connects a one-shot clip to the overlay slot and drives its
// blend-in, hold and blend-out through the Scheduler, which must be advanced once per
// frame by the same goroutine that calls Recompute. Locomotion and overlay weights live on
// different mixers, so Recompute and Scheduler.Advance may run in either order within a frame.
//
// A Controller is not safe for concurrent mutation. Weights, OverlayWeight, OverlayPhase
// and Live may be read from any goroutine.
type Controller interface {
	// Name returns the controller's debug name.
	Name() string

	// Graph returns the owned blend graph.
	Graph() Graph

	// Policy returns the weighting policy chosen at construction.
	Policy() WeightPolicy

	// Scheduler returns the scheduler that drives overlay ramps.
	Scheduler() transition.Scheduler

	// Recompute derives every locomotion weight from control and writes them in one atomic mixer update.
	// Values outside [0, 1] are clamped.
	//
	// Parameters:
	//   - control: the control value
	//
	// Returns:
	//   - error: ErrUseAfterDestroy, or a mixer error
	Recompute(control float32) error

	// PlayOverlay connects state to the overlay slot, starts fully on locomotion, then ramps
	// the overlay in over blendDuration, holds, and ramps it out so that it finishes at the
	// overlay's duration. On completion the slot is freed and locomotion is restored to weight 1.
	// A blendDuration <= 0 is floored to transition.MinDuration; when the overlay is shorter
	// than two blends the hold is clamped to zero and the blend-out follows the blend-in directly.
	//
	// Parameters:
	//   - state: the one-shot clip handle
	//   - blendDuration: the blend-in and blend-out length in seconds
	//
	// Returns:
	//   - error: ErrUseAfterDestroy, ErrInvalidTopology, ErrInvalidHandle or ErrOverlayInProgress
	PlayOverlay(state clip.Source, blendDuration float32) error

	// SetOverlayWeight writes {locomotion: 1-w, overlay: w} to the root mixer in one atomic update.
	//
	// Parameters:
	//   - w: the overlay weight, clamped to [0, 1]
	//
	// Returns:
	//   - error: ErrUseAfterDestroy, ErrInvalidTopology or a mixer error
	SetOverlayWeight(w float32) error

	// SetInputWeight writes one slot weight on a mixer owned by this controller's graph.
	//
	// Parameters:
	//   - m: the mixer handle
	//   - slot: the input slot
	//   - w: the weight (must be >= 0)
	//
	// Returns:
	//   - error: ErrUseAfterDestroy, ErrInvalidHandle or a mixer error
	SetInputWeight(m mixer.Mixer, slot int, w float32) error

	// CancelOverlay stops the current overlay without waiting for its blend-out: both ramps
	// are cancelled, the overlay slot is freed and locomotion is restored to weight 1.
	// A no-op when no overlay is playing.
	//
	// Returns:
	//   - error: ErrUseAfterDestroy, or a mixer error from freeing the slot
	CancelOverlay() error

	// Weights returns a snapshot of the locomotion weights ordered idle, walk[, run].
	// Returns nil once the controller is destroyed.
	Weights() []float32

	// OverlayWeight returns the current overlay slot weight, 0 without an overlay slot
	// or once the controller is destroyed.
	OverlayWeight() float32

	// OverlayPhase returns the stage of the current overlay.
	OverlayPhase() OverlayPhase

	// OverlayActive reports whether an overlay occupies the overlay slot.
	OverlayActive() bool

	// Live reports whether Destroy has not yet been called.
	Live() bool

	// Destroy cancels every ramp this controller registered, unbinds the output and destroys
	// the graph. Safe to call multiple times; only the first call has any effect.
	Destroy()
}

var _ Controller = &controller{}

// NewController builds a blend graph over states, binds its root mixer to the output binding
// (if one is configured) and returns the live controller. Initial weights put idle at 1.
//
// Parameters:
//   - states: 2 or 3 clip handles ordered idle, walk[, run]
//   - topology: the tree shape
//   - options: variadic list of ControllerBuilderOption functions
//
// Returns:
//   - Controller: the live controller
//   - error: ErrInvalidTopology, ErrInvalidHandle, or the binding's error
func NewController(states []clip.Source, topology Topology, options ...ControllerBuilderOption) (Controller, error) {
	c := &controller{
		name:     "blend",
		topology: topology,
		policy:   PolicyTent,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.policy == nil {
		return nil, fmt.Errorf("%w: nil weight policy", ErrInvalidTopology)
	}
	if c.scheduler == nil {
		c.scheduler = transition.NewScheduler(transition.WithLabel("Blend"))
	}

	g, err := NewGraph(c.name, states, topology, c.fallback)
	if err != nil {
		return nil, err
	}
	c.graph = g
	c.weights = make([]float32, g.StateCount())

	if c.binding != nil {
		if err := c.binding.Bind(g.Root()); err != nil {
			g.Destroy()
			return nil, fmt.Errorf("bind %s output: %w", c.name, err)
		}
	}
	return c, nil
}

func (c *controller) Name() string {
	return c.name
}

func (c *controller) Graph() Graph {
	return c.graph
}

func (c *controller) Policy() WeightPolicy {
	return c.policy
}

func (c *controller) Scheduler() transition.Scheduler {
	return c.scheduler
}

func (c *controller) Recompute(control float32) error {
	if c.destroyed.Load() {
		return ErrUseAfterDestroy
	}
	c.policy.Weights(common.Clamp01(control), c.weights)
	return c.graph.Locomotion().SetWeights(c.weights...)
}

func (c *controller) PlayOverlay(state clip.Source, blendDuration float32) error {
	if c.destroyed.Load() {
		return ErrUseAfterDestroy
	}
	if !c.graph.HasOverlaySlot() {
		return fmt.Errorf("%w: %v topology has no overlay slot", ErrInvalidTopology, c.topology)
	}
	if state == nil || !state.Valid() {
		return fmt.Errorf("%w: overlay clip", ErrInvalidHandle)
	}
	if OverlayPhase(c.phase.Load()) != OverlayIdle {
		if !c.overlayStalled() {
			return fmt.Errorf("%w: cannot start %q", ErrOverlayInProgress, state.Name())
		}
		// Ramps cancelled from outside left the slot occupied with no driver.
		log.Printf("[Blend] %s: reclaiming overlay slot abandoned in phase %v", c.name, c.OverlayPhase())
		if err := c.finishOverlay(); err != nil {
			return err
		}
	}

	if !(blendDuration > 0) {
		log.Printf("[Blend] %s: overlay %q blend duration %v clamped to %v", c.name, state.Name(), blendDuration, transition.MinDuration)
		blendDuration = transition.MinDuration
	}
	hold := state.Duration() - 2*blendDuration
	if hold < 0 {
		log.Printf("[Blend] %s: overlay %q (%.3fs) shorter than two blends of %.3fs, hold clamped to 0", c.name, state.Name(), state.Duration(), blendDuration)
		hold = 0
	}

	if _, err := c.graph.ConnectOverlay(state); err != nil {
		return err
	}
	if err := c.graph.Root().SetWeights(1, 0); err != nil {
		_ = c.graph.DisconnectOverlay()
		return err
	}

	c.phase.Store(int32(OverlayBlendIn))
	c.rampIn = c.scheduler.StartRamp(0, 1, blendDuration, c.applyOverlay,
		transition.WithOnComplete(func() {
			c.rampIn = nil
			if hold > 0 {
				c.phase.Store(int32(OverlayHold))
			} else {
				c.phase.Store(int32(OverlayBlendOut))
			}
			c.rampOut = c.scheduler.StartRamp(1, 0, blendDuration, c.applyOverlay,
				transition.WithDelay(hold),
				transition.WithOnComplete(c.completeOverlay),
			)
		}),
	)
	return nil
}

// applyOverlay is the progress callback shared by the blend-in and blend-out ramps.
func (c *controller) applyOverlay(t, value float32) {
	if c.rampOut != nil && OverlayPhase(c.phase.Load()) == OverlayHold {
		c.phase.Store(int32(OverlayBlendOut))
	}
	if err := c.SetOverlayWeight(value); err != nil {
		log.Printf("[Blend] %s: overlay weight update failed: %v", c.name, err)
	}
}

// overlayStalled reports whether the overlay phase is not idle but neither ramp is still in flight.
func (c *controller) overlayStalled() bool {
	inFlight := func(r *transition.Ramp) bool { return r != nil && !r.Done() }
	return !inFlight(c.rampIn) && !inFlight(c.rampOut)
}

// completeOverlay is the blend-out completion callback.
func (c *controller) completeOverlay() {
	if err := c.finishOverlay(); err != nil {
		log.Printf("[Blend] %s: overlay cleanup failed: %v", c.name, err)
	}
}

// finishOverlay frees the overlay slot and restores full locomotion weight.
func (c *controller) finishOverlay() error {
	c.rampIn, c.rampOut = nil, nil
	defer c.phase.Store(int32(OverlayIdle))
	if err := c.graph.DisconnectOverlay(); err != nil {
		return fmt.Errorf("disconnect overlay: %w", err)
	}
	if err := c.graph.Root().SetWeights(1, 0); err != nil {
		return fmt.Errorf("restore locomotion: %w", err)
	}
	return nil
}

func (c *controller) CancelOverlay() error {
	if c.destroyed.Load() {
		return ErrUseAfterDestroy
	}
	if OverlayPhase(c.phase.Load()) == OverlayIdle {
		return nil
	}
	c.scheduler.Cancel(c.rampIn)
	c.scheduler.Cancel(c.rampOut)
	return c.finishOverlay()
}

func (c *controller) SetOverlayWeight(w float32) error {
	if c.destroyed.Load() {
		return ErrUseAfterDestroy
	}
	if !c.graph.HasOverlaySlot() {
		return fmt.Errorf("%w: %v topology has no overlay slot", ErrInvalidTopology, c.topology)
	}
	w = common.Clamp01(w)
	return c.graph.Root().SetWeights(1-w, w)
}

func (c *controller) SetInputWeight(m mixer.Mixer, slot int, w float32) error {
	if c.destroyed.Load() {
		return ErrUseAfterDestroy
	}
	if !c.graph.Owns(m) {
		return fmt.Errorf("%w: mixer not owned by graph %q", ErrInvalidHandle, c.name)
	}
	return m.SetInputWeight(slot, w)
}

func (c *controller) Weights() []float32 {
	if c.destroyed.Load() {
		return nil
	}
	return c.graph.Locomotion().Weights()
}

func (c *controller) OverlayWeight() float32 {
	if c.destroyed.Load() || !c.graph.HasOverlaySlot() {
		return 0
	}
	return c.graph.Root().InputWeight(overlaySlot)
}

func (c *controller) OverlayPhase() OverlayPhase {
	return OverlayPhase(c.phase.Load())
}

func (c *controller) OverlayActive() bool {
	return c.OverlayPhase() != OverlayIdle
}

func (c *controller) Live() bool {
	return !c.destroyed.Load()
}

func (c *controller) Destroy() {
	if c == nil || !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	// Ramps first: no callback may reach the graph after it is gone.
	if c.scheduler != nil {
		c.scheduler.Cancel(c.rampIn)
		c.scheduler.Cancel(c.rampOut)
	}
	c.rampIn, c.rampOut = nil, nil
	c.phase.Store(int32(OverlayIdle))

	if c.binding != nil {
		c.binding.Unbind()
	}
	if c.graph != nil {
		c.graph.Destroy()
	}
}
