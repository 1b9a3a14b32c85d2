package blend

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/transition"
)

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controller)

// WithName sets the debug name of the Controller and its graph.
//
// Parameters:
//   - name: the name used in mixer labels and log lines
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithName(name string) ControllerBuilderOption {
	return func(c *controller) {
		c.name = name
	}
}

// WithPolicy selects the locomotion weighting policy. Defaults to PolicyTent.
//
// Parameters:
//   - p: the weighting policy
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithPolicy(p WeightPolicy) ControllerBuilderOption {
	return func(c *controller) {
		c.policy = p
	}
}

// WithScheduler sets the Scheduler that drives overlay ramps. When omitted the Controller
// creates its own, reachable via Controller.Scheduler.
//
// Parameters:
//   - s: the scheduler
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithScheduler(s transition.Scheduler) ControllerBuilderOption {
	return func(c *controller) {
		c.scheduler = s
	}
}

// WithBinding sets the output binding that receives the root mixer at construction.
//
// Parameters:
//   - b: the output binding
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithBinding(b OutputBinding) ControllerBuilderOption {
	return func(c *controller) {
		c.binding = b
	}
}

// WithFallbackPose sets the pose the graph's mixers produce when no input contributes weight.
//
// Parameters:
//   - pose: the fallback pose, usually the skeleton's bind pose
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithFallbackPose(pose clip.Pose) ControllerBuilderOption {
	return func(c *controller) {
		c.fallback = pose
	}
}
