// Package mixer provides the playable node tree evaluated by the output binding:
// clip leaves and weighted mixers.
package mixer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

var (
	// ErrSlotOutOfRange is returned when an input slot index is outside the mixer's arity.
	ErrSlotOutOfRange = errors.New("mixer: input slot out of range")

	// ErrSlotOccupied is returned when connecting to a slot that already holds an input.
	ErrSlotOccupied = errors.New("mixer: input slot already connected")

	// ErrSlotEmpty is returned when disconnecting a slot that holds no input.
	ErrSlotEmpty = errors.New("mixer: input slot not connected")

	// ErrNegativeWeight is returned when a weight below zero is written.
	ErrNegativeWeight = errors.New("mixer: negative input weight")

	// ErrWeightCount is returned when SetWeights receives a vector whose length differs from the arity.
	ErrWeightCount = errors.New("mixer: weight count does not match arity")

	// ErrInvalidPlayable is returned when connecting a nil or destroyed playable.
	ErrInvalidPlayable = errors.New("mixer: invalid playable")

	// ErrDestroyed is returned by every mutating call on a destroyed node.
	ErrDestroyed = errors.New("mixer: node destroyed")
)

// Playable is a node in the animation tree. Leaves sample clips; mixers combine children.
type Playable interface {
	// Valid reports whether the node can still be connected and evaluated.
	//
	// Returns:
	//   - bool: false once the node has been destroyed
	Valid() bool

	// Advance moves the node's local playback time forward by deltaTime seconds.
	// Mixers forward the call to every connected input regardless of weight.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	Advance(deltaTime float32)

	// Evaluate writes the node's current pose into out.
	//
	// Parameters:
	//   - out: the destination pose
	Evaluate(out clip.Pose)

	// Destroy invalidates the node. Safe to call multiple times.
	Destroy()
}
