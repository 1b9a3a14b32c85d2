package input

import "github.com/Carmen-Shannon/oxy-blend/common"

// ControlsBuilderOption is a functional option for configuring Controls.
type ControlsBuilderOption func(*controls)

// WithRate sets the weight change per second while a raise or lower key is held.
// Values <= 0 are ignored.
//
// Parameters:
//   - rate: weight units per second
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithRate(rate float32) ControlsBuilderOption {
	return func(c *controls) {
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithRestWeight sets the weight applied by the reset keys. Clamped to [0, 1].
//
// Parameters:
//   - w: the rest weight
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithRestWeight(w float32) ControlsBuilderOption {
	return func(c *controls) {
		c.rest = common.Clamp01(w)
	}
}

// WithTargets sets the initial controlled characters.
//
// Parameters:
//   - targets: the characters to drive
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithTargets(targets ...Controllable) ControlsBuilderOption {
	return func(c *controls) {
		for _, t := range targets {
			if t != nil {
				c.targets = append(c.targets, t)
			}
		}
	}
}
