package game_object

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend"
	"github.com/Carmen-Shannon/oxy-blend/engine/config"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

// FromConfig creates a GameObject for a configured character.
// Extra options are applied after the configured ones and may override them.
//
// Parameters:
//   - ch: the character configuration
//   - m: the model built from the same scene configuration
//   - options: additional functional options
//
// Returns:
//   - GameObject: the newly created object
//   - error: an error if the topology, policy or clips do not resolve
func FromConfig(ch *config.CharacterConfig, m model.Model, options ...GameObjectBuilderOption) (GameObject, error) {
	topology, err := blend.ParseTopology(ch.Topology)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", ch.Name, err)
	}
	policy, err := blend.PolicyByName(ch.Policy)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", ch.Name, err)
	}

	opts := []GameObjectBuilderOption{
		WithName(ch.Name),
		WithModel(m),
		WithStates(ch.States...),
		WithTopology(topology),
		WithPolicy(policy),
		WithWeight(ch.Weight),
	}
	for _, o := range ch.Overlays {
		name := o.Name
		if name == "" {
			name = o.Clip
		}
		opts = append(opts, WithOverlay(name, o.Clip, o.BlendDuration))
	}
	return NewGameObject(append(opts, options...)...)
}
