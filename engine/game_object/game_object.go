package game_object

import (
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/Carmen-Shannon/oxy-blend/engine/blend"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

// overlaySpec is a named one-shot clip the object can play on its overlay slot.
type overlaySpec struct {
	clip          string
	blendDuration float32
	source        clip.Source
}

type gameObject struct {
	mu *sync.Mutex

	id        uint64
	name      string
	enabled   atomic.Bool
	destroyed atomic.Bool

	mdl        model.Model
	stateNames []string
	topology   blend.Topology
	policy     blend.WeightPolicy
	overlays   map[string]*overlaySpec
	sinks      []animator.PoseSink

	// weight holds the float32 bits of the control value.
	weight   atomic.Uint32
	triggers chan string
	ticks    atomic.Uint64

	sources    []clip.Source
	controller blend.Controller
	animator   animator.Animator
}

// GameObject defines the interface for a blended character in a scene.
//
// A GameObject owns its blend controller, the animator bound to the controller's root mixer
// and the clip sources built from its model. The control value and the overlay trigger
// queue may be written from any goroutine; Update, PlayOverlay and Destroy are serialized.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the object's name.
	Name() string

	// Enabled returns whether Update advances this object.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether Update advances this object.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the Model the object's rig and clips come from.
	//
	// Returns:
	//   - model.Model: the associated model
	Model() model.Model

	// Controller returns the blend controller owned by this object.
	//
	// Returns:
	//   - blend.Controller: the controller
	Controller() blend.Controller

	// Animator returns the animator bound to the controller's root mixer.
	//
	// Returns:
	//   - animator.Animator: the animator
	Animator() animator.Animator

	// Weight returns the current control value.
	//
	// Returns:
	//   - float32: the control value as last set (not clamped)
	Weight() float32

	// SetWeight sets the control value consumed by the next Update. Safe from any goroutine.
	//
	// Parameters:
	//   - w: the control value; clamped to [0, 1] when applied
	SetWeight(w float32)

	// OverlayNames returns the names of the overlays this object can play, sorted.
	//
	// Returns:
	//   - []string: the overlay names
	OverlayNames() []string

	// TriggerOverlay queues a named overlay to start at the beginning of the next Update.
	// Safe from any goroutine. A queued trigger that the controller rejects is logged and dropped.
	//
	// Parameters:
	//   - name: the overlay name
	//
	// Returns:
	//   - bool: false if the name is unknown or the queue is full
	TriggerOverlay(name string) bool

	// PlayOverlay starts a named overlay immediately and reports the controller's decision.
	//
	// Parameters:
	//   - name: the overlay name
	//
	// Returns:
	//   - error: blend.ErrInvalidHandle for an unknown name, or any PlayOverlay error
	PlayOverlay(name string) error

	// Update runs one tick: drains queued overlay triggers, recomputes the locomotion
	// weights from the control value, advances the transition scheduler and prepares
	// the animator's frame, in that order. A disabled object is skipped.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last tick in seconds
	//
	// Returns:
	//   - error: blend.ErrUseAfterDestroy, or an error from the animator
	Update(deltaTime float32) error

	// Ticks returns the number of completed Update calls.
	Ticks() uint64

	// Pose returns a copy of the most recent blended local pose.
	Pose() clip.Pose

	// Live reports whether Destroy has not yet been called.
	Live() bool

	// Destroy tears down the controller, releases the animator and its sinks and releases
	// every clip source. Safe to call multiple times.
	Destroy()
}

var _ GameObject = &gameObject{}

// NewGameObject creates a character from its model and options. The controller is built over
// the configured locomotion states and bound to a fresh animator for the model's skeleton.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
//   - error: an error if the model, states or overlays do not resolve, or the controller rejects them
func NewGameObject(options ...GameObjectBuilderOption) (GameObject, error) {
	obj := &gameObject{
		mu:       &sync.Mutex{},
		name:     "character",
		policy:   blend.PolicyTent,
		overlays: make(map[string]*overlaySpec),
		triggers: make(chan string, 8),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}

	if obj.mdl == nil || obj.mdl.Skeleton() == nil {
		return nil, fmt.Errorf("game object %q: model with a skeleton is required", obj.name)
	}
	if len(obj.stateNames) == 0 {
		obj.stateNames = obj.mdl.AnimationNames()
	}

	bindPose := clip.Pose(obj.mdl.Skeleton().BindPose())
	newSource := func(clipName string) (clip.Source, error) {
		anim := obj.mdl.Animation(clipName)
		if anim == nil {
			return nil, fmt.Errorf("game object %q: %w: no clip %q in model %q", obj.name, blend.ErrInvalidHandle, clipName, obj.mdl.Name())
		}
		src := clip.NewSource(anim, clip.WithBindPose(bindPose))
		obj.sources = append(obj.sources, src)
		return src, nil
	}

	states := make([]clip.Source, 0, len(obj.stateNames))
	for _, n := range obj.stateNames {
		src, err := newSource(n)
		if err != nil {
			obj.releaseSources()
			return nil, err
		}
		states = append(states, src)
	}
	for name, o := range obj.overlays {
		src, err := newSource(o.clip)
		if err != nil {
			obj.releaseSources()
			return nil, fmt.Errorf("overlay %q: %w", name, err)
		}
		o.source = src
	}

	anim, err := animator.NewAnimator(obj.mdl.Skeleton(), animator.WithLabel(obj.name))
	if err != nil {
		obj.releaseSources()
		return nil, err
	}
	for _, s := range obj.sinks {
		anim.AddSink(s)
	}
	obj.animator = anim

	ctrl, err := blend.NewController(states, obj.topology,
		blend.WithName(obj.name),
		blend.WithPolicy(obj.policy),
		blend.WithBinding(anim),
		blend.WithFallbackPose(bindPose),
	)
	if err != nil {
		anim.Release()
		obj.releaseSources()
		return nil, err
	}
	obj.controller = ctrl
	return obj, nil
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Controller() blend.Controller {
	return g.controller
}

func (g *gameObject) Animator() animator.Animator {
	return g.animator
}

func (g *gameObject) Weight() float32 {
	return math.Float32frombits(g.weight.Load())
}

func (g *gameObject) SetWeight(w float32) {
	g.weight.Store(math.Float32bits(w))
}

func (g *gameObject) OverlayNames() []string {
	names := make([]string, 0, len(g.overlays))
	for n := range g.overlays {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (g *gameObject) TriggerOverlay(name string) bool {
	if _, ok := g.overlays[name]; !ok || g.destroyed.Load() {
		return false
	}
	select {
	case g.triggers <- name:
		return true
	default:
		return false
	}
}

func (g *gameObject) PlayOverlay(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playOverlay(name)
}

func (g *gameObject) playOverlay(name string) error {
	if g.destroyed.Load() {
		return blend.ErrUseAfterDestroy
	}
	o, ok := g.overlays[name]
	if !ok {
		return fmt.Errorf("%w: unknown overlay %q", blend.ErrInvalidHandle, name)
	}
	return g.controller.PlayOverlay(o.source, o.blendDuration)
}

func (g *gameObject) Update(deltaTime float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed.Load() {
		return blend.ErrUseAfterDestroy
	}
	if !g.enabled.Load() {
		return nil
	}

	g.drainTriggers()
	if err := g.controller.Recompute(common.Clamp01(g.Weight())); err != nil {
		return err
	}
	g.controller.Scheduler().Advance(deltaTime)
	if err := g.animator.PrepareFrame(deltaTime); err != nil {
		return fmt.Errorf("game object %q: %w", g.name, err)
	}
	g.ticks.Add(1)
	return nil
}

// drainTriggers starts every queued overlay. Callers hold g.mu.
func (g *gameObject) drainTriggers() {
	for {
		select {
		case name := <-g.triggers:
			if err := g.playOverlay(name); err != nil {
				log.Printf("[GameObject] %s: overlay %q rejected: %v", g.name, name, err)
			}
		default:
			return
		}
	}
}

func (g *gameObject) Ticks() uint64 {
	return g.ticks.Load()
}

func (g *gameObject) Pose() clip.Pose {
	return g.animator.Pose()
}

func (g *gameObject) Live() bool {
	return !g.destroyed.Load()
}

func (g *gameObject) Destroy() {
	if g == nil || !g.destroyed.CompareAndSwap(false, true) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.controller != nil {
		g.controller.Destroy()
	}
	if g.animator != nil {
		g.animator.Release()
	}
	g.releaseSources()
}

func (g *gameObject) releaseSources() {
	for _, s := range g.sources {
		s.Release()
	}
	g.sources = nil
}
