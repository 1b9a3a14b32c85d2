package mixer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

// mixer is the implementation of the Mixer interface.
type mixer struct {
	mu        *sync.Mutex
	label     string
	inputs    []Playable
	weights   []float32
	fallback  clip.Pose
	scratch   []clip.Pose
	destroyed bool
}

// Mixer is a weighted combiner with a fixed number of input slots.
//
// Every weight write happens under the mixer's lock, and Evaluate snapshots the whole weight
// vector under the same lock, so an evaluating observer never sees a partially updated
// set of weights. SetWeights is the atomic multi-slot entry point.
type Mixer interface {
	Playable

	// Label returns the debug label given at construction.
	//
	// Returns:
	//   - string: the mixer label
	Label() string

	// Arity returns the fixed number of input slots.
	//
	// Returns:
	//   - int: the slot count
	Arity() int

	// ConnectInput attaches p to an empty slot with the given initial weight.
	//
	// Parameters:
	//   - slot: the input slot index
	//   - p: the child playable
	//   - weight: the initial weight (must be >= 0)
	//
	// Returns:
	//   - error: ErrSlotOutOfRange, ErrSlotOccupied, ErrInvalidPlayable, ErrNegativeWeight or ErrDestroyed
	ConnectInput(slot int, p Playable, weight float32) error

	// DisconnectInput detaches the child in slot and zeroes its weight.
	//
	// Parameters:
	//   - slot: the input slot index
	//
	// Returns:
	//   - Playable: the detached child
	//   - error: ErrSlotOutOfRange, ErrSlotEmpty or ErrDestroyed
	DisconnectInput(slot int) (Playable, error)

	// Input returns the child connected to slot, or nil.
	//
	// Parameters:
	//   - slot: the input slot index
	//
	// Returns:
	//   - Playable: the connected child or nil
	Input(slot int) Playable

	// InputWeight returns the current weight of slot, or 0 for an out-of-range slot.
	//
	// Parameters:
	//   - slot: the input slot index
	//
	// Returns:
	//   - float32: the slot weight
	InputWeight(slot int) float32

	// SetInputWeight writes a single slot weight.
	//
	// Parameters:
	//   - slot: the input slot index
	//   - weight: the new weight (must be >= 0)
	//
	// Returns:
	//   - error: ErrSlotOutOfRange, ErrNegativeWeight or ErrDestroyed
	SetInputWeight(slot int, weight float32) error

	// SetWeights replaces the full weight vector in one locked write.
	// Either every weight is applied or none is.
	//
	// Parameters:
	//   - weights: exactly Arity() non-negative weights
	//
	// Returns:
	//   - error: ErrWeightCount, ErrNegativeWeight or ErrDestroyed
	SetWeights(weights ...float32) error

	// Weights returns a snapshot copy of the weight vector.
	//
	// Returns:
	//   - []float32: the weights, one per slot
	Weights() []float32

	// WeightSum returns the sum of the current weights.
	//
	// Returns:
	//   - float32: the weight sum
	WeightSum() float32
}

var _ Mixer = &mixer{}

// NewMixer creates a Mixer with arity empty slots, all weights 0.
//
// Parameters:
//   - arity: the number of input slots (must be >= 1)
//   - options: variadic list of MixerBuilderOption functions
//
// Returns:
//   - Mixer: the new mixer
//   - error: an error if arity < 1
func NewMixer(arity int, options ...MixerBuilderOption) (Mixer, error) {
	if arity < 1 {
		return nil, fmt.Errorf("mixer: arity must be at least 1, got %d", arity)
	}
	m := &mixer{
		mu:      &sync.Mutex{},
		inputs:  make([]Playable, arity),
		weights: make([]float32, arity),
		scratch: make([]clip.Pose, arity),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *mixer) Label() string {
	return m.label
}

func (m *mixer) Arity() int {
	return len(m.inputs)
}

func (m *mixer) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.destroyed
}

func (m *mixer) ConnectInput(slot int, p Playable, weight float32) error {
	if p == nil || !p.Valid() {
		return ErrInvalidPlayable
	}
	if weight < 0 {
		return ErrNegativeWeight
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrDestroyed
	}
	if slot < 0 || slot >= len(m.inputs) {
		return fmt.Errorf("%w: slot %d, arity %d", ErrSlotOutOfRange, slot, len(m.inputs))
	}
	if m.inputs[slot] != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotOccupied, slot)
	}
	m.inputs[slot] = p
	m.weights[slot] = weight
	return nil
}

func (m *mixer) DisconnectInput(slot int) (Playable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, ErrDestroyed
	}
	if slot < 0 || slot >= len(m.inputs) {
		return nil, fmt.Errorf("%w: slot %d, arity %d", ErrSlotOutOfRange, slot, len(m.inputs))
	}
	p := m.inputs[slot]
	if p == nil {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}
	m.inputs[slot] = nil
	m.weights[slot] = 0
	return p, nil
}

func (m *mixer) Input(slot int) Playable {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot < 0 || slot >= len(m.inputs) {
		return nil
	}
	return m.inputs[slot]
}

func (m *mixer) InputWeight(slot int) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot < 0 || slot >= len(m.weights) {
		return 0
	}
	return m.weights[slot]
}

func (m *mixer) SetInputWeight(slot int, weight float32) error {
	if weight < 0 {
		return ErrNegativeWeight
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrDestroyed
	}
	if slot < 0 || slot >= len(m.weights) {
		return fmt.Errorf("%w: slot %d, arity %d", ErrSlotOutOfRange, slot, len(m.weights))
	}
	m.weights[slot] = weight
	return nil
}

func (m *mixer) SetWeights(weights ...float32) error {
	if len(weights) != len(m.weights) {
		return fmt.Errorf("%w: got %d, want %d", ErrWeightCount, len(weights), len(m.weights))
	}
	for _, w := range weights {
		if w < 0 {
			return ErrNegativeWeight
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrDestroyed
	}
	copy(m.weights, weights)
	return nil
}

func (m *mixer) Weights() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float32, len(m.weights))
	copy(out, m.weights)
	return out
}

func (m *mixer) WeightSum() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return common.Sum(m.weights)
}

func (m *mixer) Advance(deltaTime float32) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	inputs := make([]Playable, len(m.inputs))
	copy(inputs, m.inputs)
	m.mu.Unlock()

	for _, p := range inputs {
		if p != nil {
			p.Advance(deltaTime)
		}
	}
}

// Evaluate snapshots inputs and weights under the lock, then evaluates each contributing
// child into its scratch pose and blends the results. Scratch poses are per mixer, so a
// single binding must serialize Evaluate calls on one tree.
func (m *mixer) Evaluate(out clip.Pose) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		out.CopyFrom(m.fallback)
		return
	}
	inputs := make([]Playable, len(m.inputs))
	weights := make([]float32, len(m.weights))
	copy(inputs, m.inputs)
	copy(weights, m.weights)
	m.mu.Unlock()

	poses := make([]clip.Pose, len(inputs))
	for i, p := range inputs {
		if p == nil || weights[i] <= 0 {
			weights[i] = 0
			continue
		}
		if len(m.scratch[i]) != len(out) {
			m.scratch[i] = clip.NewPose(len(out))
		}
		p.Evaluate(m.scratch[i])
		poses[i] = m.scratch[i]
	}
	clip.Blend(out, poses, weights, m.fallback)
}

func (m *mixer) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	for i := range m.inputs {
		m.inputs[i] = nil
		m.weights[i] = 0
	}
}
