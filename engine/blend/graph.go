package blend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/mixer"
)

// Topology selects the shape of the mixer tree built for a character.
type Topology int

const (
	// TopologyFlat connects every locomotion state directly to the root mixer. It has no overlay slot.
	TopologyFlat Topology = iota

	// TopologyLayered puts the locomotion states on a submix feeding slot 0 of a two-slot
	// root mixer; slot 1 is reserved for a one-shot overlay.
	TopologyLayered
)

const (
	// MinStates is the smallest supported number of locomotion states.
	MinStates = 2

	// MaxStates is the largest supported number of locomotion states.
	MaxStates = 3

	locomotionSlot = 0
	overlaySlot    = 1
)

func (t Topology) String() string {
	switch t {
	case TopologyFlat:
		return "flat"
	case TopologyLayered:
		return "layered"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology resolves a topology from its configuration name. An empty name is TopologyFlat.
//
// Parameters:
//   - name: "flat" or "layered"
//
// Returns:
//   - Topology: the resolved topology
//   - error: an error wrapping ErrInvalidTopology for an unknown name
func ParseTopology(name string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "flat":
		return TopologyFlat, nil
	case "layered", "overlay":
		return TopologyLayered, nil
	default:
		return 0, fmt.Errorf("%w: unknown topology %q", ErrInvalidTopology, name)
	}
}

// graph is the implementation of the Graph interface.
type graph struct {
	mu         *sync.Mutex
	name       string
	topology   Topology
	root       mixer.Mixer
	locomotion mixer.Mixer
	states     []mixer.ClipPlayable
	overlay    mixer.ClipPlayable
	destroyed  bool
}

// Graph is the mixer tree owned by one character.
//
// The graph owns every mixer and leaf node it creates and destroys each exactly once.
// Clip sources are externally owned and only referenced. Liveness is a single flag flipped
// by Destroy; every other mutating method fails with ErrUseAfterDestroy afterwards.
type Graph interface {
	// Name returns the graph's debug name.
	Name() string

	// Topology returns the tree shape chosen at construction.
	Topology() Topology

	// Root returns the top-level mixer handed to the output binding.
	Root() mixer.Mixer

	// Locomotion returns the mixer holding the locomotion states.
	// For TopologyFlat this is the root mixer itself.
	Locomotion() mixer.Mixer

	// StateCount returns the number of locomotion states.
	StateCount() int

	// State returns the leaf for locomotion state i, or nil.
	//
	// Parameters:
	//   - i: the state index (0 = idle)
	//
	// Returns:
	//   - mixer.ClipPlayable: the leaf or nil
	State(i int) mixer.ClipPlayable

	// HasOverlaySlot reports whether the topology reserves an overlay slot.
	HasOverlaySlot() bool

	// Overlay returns the currently connected overlay leaf, or nil.
	Overlay() mixer.ClipPlayable

	// ConnectOverlay connects a fresh one-shot leaf for src into the overlay slot with weight 0.
	//
	// Parameters:
	//   - src: the overlay clip handle
	//
	// Returns:
	//   - mixer.ClipPlayable: the connected leaf
	//   - error: ErrInvalidTopology, ErrInvalidHandle, ErrUseAfterDestroy or a mixer error
	ConnectOverlay(src clip.Source) (mixer.ClipPlayable, error)

	// DisconnectOverlay detaches and destroys the overlay leaf, freeing the slot.
	// A no-op when no overlay is connected.
	//
	// Returns:
	//   - error: ErrUseAfterDestroy or a mixer error
	DisconnectOverlay() error

	// Owns reports whether m is one of the graph's mixers.
	//
	// Parameters:
	//   - m: the mixer handle
	//
	// Returns:
	//   - bool: true if the graph created m
	Owns(m mixer.Mixer) bool

	// Live reports whether Destroy has not yet been called.
	Live() bool

	// Destroy releases every node exactly once. Subsequent calls are no-ops.
	//
	// Returns:
	//   - bool: true if this call performed the teardown
	Destroy() bool
}

var _ Graph = &graph{}

// NewGraph builds the mixer tree for the given locomotion states and connects every leaf.
// State 0 (idle) starts at weight 1 and every other state at 0. In the layered topology
// the root starts fully on the locomotion submix with the overlay slot empty.
//
// Parameters:
//   - name: the debug name
//   - states: 2 or 3 valid clip handles ordered idle, walk[, run]
//   - topology: the tree shape
//   - fallback: the pose produced when no input contributes (may be nil)
//
// Returns:
//   - Graph: the live graph
//   - error: ErrInvalidTopology or ErrInvalidHandle
func NewGraph(name string, states []clip.Source, topology Topology, fallback clip.Pose) (Graph, error) {
	if topology != TopologyFlat && topology != TopologyLayered {
		return nil, fmt.Errorf("%w: unsupported topology %v", ErrInvalidTopology, topology)
	}
	if len(states) < MinStates || len(states) > MaxStates {
		return nil, fmt.Errorf("%w: %v topology needs %d to %d states, got %d", ErrInvalidTopology, topology, MinStates, MaxStates, len(states))
	}
	for i, s := range states {
		if s == nil || !s.Valid() {
			return nil, fmt.Errorf("%w: state %d", ErrInvalidHandle, i)
		}
	}

	g := &graph{
		mu:       &sync.Mutex{},
		name:     name,
		topology: topology,
	}

	var err error
	g.locomotion, err = mixer.NewMixer(len(states), mixer.WithLabel(name+"/locomotion"), mixer.WithFallbackPose(fallback))
	if err != nil {
		return nil, err
	}

	for i, s := range states {
		leaf := mixer.NewClipPlayable(s)
		var w float32
		if i == 0 {
			w = 1
		}
		if err := g.locomotion.ConnectInput(i, leaf, w); err != nil {
			g.teardown()
			return nil, fmt.Errorf("connect state %d: %w", i, err)
		}
		g.states = append(g.states, leaf)
	}

	if topology == TopologyFlat {
		g.root = g.locomotion
		return g, nil
	}

	g.root, err = mixer.NewMixer(2, mixer.WithLabel(name+"/root"), mixer.WithFallbackPose(fallback))
	if err != nil {
		g.teardown()
		return nil, err
	}
	if err := g.root.ConnectInput(locomotionSlot, g.locomotion, 1); err != nil {
		g.teardown()
		return nil, fmt.Errorf("connect locomotion submix: %w", err)
	}
	return g, nil
}

func (g *graph) Name() string {
	return g.name
}

func (g *graph) Topology() Topology {
	return g.topology
}

func (g *graph) Root() mixer.Mixer {
	return g.root
}

func (g *graph) Locomotion() mixer.Mixer {
	return g.locomotion
}

func (g *graph) StateCount() int {
	return len(g.states)
}

func (g *graph) State(i int) mixer.ClipPlayable {
	if i < 0 || i >= len(g.states) {
		return nil
	}
	return g.states[i]
}

func (g *graph) HasOverlaySlot() bool {
	return g.topology == TopologyLayered
}

func (g *graph) Overlay() mixer.ClipPlayable {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.overlay
}

func (g *graph) ConnectOverlay(src clip.Source) (mixer.ClipPlayable, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return nil, ErrUseAfterDestroy
	}
	if g.topology != TopologyLayered {
		return nil, fmt.Errorf("%w: %v topology has no overlay slot", ErrInvalidTopology, g.topology)
	}
	if src == nil || !src.Valid() {
		return nil, fmt.Errorf("%w: overlay clip", ErrInvalidHandle)
	}

	leaf := mixer.NewClipPlayable(src)
	if err := g.root.ConnectInput(overlaySlot, leaf, 0); err != nil {
		leaf.Destroy()
		return nil, err
	}
	g.overlay = leaf
	return leaf, nil
}

func (g *graph) DisconnectOverlay() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return ErrUseAfterDestroy
	}
	if g.overlay == nil {
		return nil
	}
	if _, err := g.root.DisconnectInput(overlaySlot); err != nil {
		return err
	}
	g.overlay.Destroy()
	g.overlay = nil
	return nil
}

func (g *graph) Owns(m mixer.Mixer) bool {
	return m != nil && (m == g.root || m == g.locomotion)
}

func (g *graph) Live() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.destroyed
}

func (g *graph) Destroy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return false
	}
	g.destroyed = true
	g.teardown()
	return true
}

// teardown destroys every node the graph created. Callers hold g.mu or own g exclusively.
func (g *graph) teardown() {
	if g.overlay != nil {
		g.overlay.Destroy()
		g.overlay = nil
	}
	for _, leaf := range g.states {
		leaf.Destroy()
	}
	if g.root != nil && g.root != g.locomotion {
		g.root.Destroy()
	}
	if g.locomotion != nil {
		g.locomotion.Destroy()
	}
}
