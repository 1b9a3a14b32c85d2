package mixer

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

// MixerBuilderOption is a functional option for configuring a Mixer during construction.
type MixerBuilderOption func(*mixer)

// WithLabel sets the debug label of the Mixer.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - MixerBuilderOption: option function to apply
func WithLabel(label string) MixerBuilderOption {
	return func(m *mixer) {
		m.label = label
	}
}

// WithFallbackPose sets the pose the Mixer produces when no input contributes weight.
// Without one the Mixer produces identity transforms.
//
// Parameters:
//   - pose: the fallback pose (referenced, not copied)
//
// Returns:
//   - MixerBuilderOption: option function to apply
func WithFallbackPose(pose clip.Pose) MixerBuilderOption {
	return func(m *mixer) {
		m.fallback = pose
	}
}
