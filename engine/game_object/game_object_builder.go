package game_object

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/Carmen-Shannon/oxy-blend/engine/blend"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the name used for the GameObject's controller, animator and log lines.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is advanced by Update. Defaults to true.
//
// Parameters:
//   - enabled: true to advance the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model providing the skeleton and clips.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithStates names the locomotion clips, ordered idle, walk[, run].
// When omitted every clip in the model is used, in model order.
//
// Parameters:
//   - names: the clip names
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the locomotion states
func WithStates(names ...string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.stateNames = append([]string(nil), names...)
	}
}

// WithTopology sets the blend graph shape. Defaults to blend.TopologyFlat.
//
// Parameters:
//   - t: the topology
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the topology
func WithTopology(t blend.Topology) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.topology = t
	}
}

// WithPolicy sets the locomotion weighting policy. Defaults to blend.PolicyTent.
//
// Parameters:
//   - p: the weighting policy
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the policy
func WithPolicy(p blend.WeightPolicy) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.policy = p
	}
}

// WithWeight sets the initial control value.
//
// Parameters:
//   - w: the control value
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the control value
func WithWeight(w float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.SetWeight(w)
	}
}

// WithOverlay registers a named one-shot overlay.
//
// Parameters:
//   - name: the trigger name
//   - clipName: the model clip played on the overlay slot
//   - blendDuration: the blend-in and blend-out length in seconds
//
// Returns:
//   - GameObjectBuilderOption: functional option to add the overlay
func WithOverlay(name, clipName string, blendDuration float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.overlays[name] = &overlaySpec{clip: clipName, blendDuration: blendDuration}
	}
}

// WithSink adds a palette consumer to the GameObject's animator.
//
// Parameters:
//   - sink: the palette consumer
//
// Returns:
//   - GameObjectBuilderOption: functional option to add the sink
func WithSink(sink animator.PoseSink) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if sink != nil {
			obj.sinks = append(obj.sinks, sink)
		}
	}
}

// WithTriggerCapacity sets how many overlay triggers may be queued between ticks. Defaults to 8.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the trigger queue capacity
func WithTriggerCapacity(n int) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if n > 0 {
			obj.triggers = make(chan string, n)
		}
	}
}
