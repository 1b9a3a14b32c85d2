package blend

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// WeightPolicy maps a clamped control value in [0, 1] onto one weight per locomotion state.
// Implementations write exactly len(out) non-negative weights that sum to 1.
type WeightPolicy interface {
	// Name returns the identifier used in configuration files.
	Name() string

	// Weights fills out with the state weights for control.
	//
	// Parameters:
	//   - control: the control value, already clamped to [0, 1]
	//   - out: one slot per state, ordered idle, walk[, run]
	Weights(control float32, out []float32)
}

var (
	// PolicyTent spaces the states evenly at control = 0, 1/(N-1), ..., 1 and gives each a
	// triangular weight that peaks at its own keyframe and reaches 0 at its neighbours.
	PolicyTent WeightPolicy = tentPolicy{}

	// PolicyTwoPhase gates the hand-off at the control midpoint: the first half crosses
	// idle into walk, and run only gains weight once walk has saturated.
	PolicyTwoPhase WeightPolicy = twoPhasePolicy{}
)

// PolicyByName resolves a policy from its configuration name ("tent" or "two_phase").
// An empty name resolves to PolicyTent.
//
// Parameters:
//   - name: the policy name
//
// Returns:
//   - WeightPolicy: the resolved policy
//   - error: an error for an unknown name
func PolicyByName(name string) (WeightPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tent", "linear":
		return PolicyTent, nil
	case "two_phase", "two-phase", "twophase":
		return PolicyTwoPhase, nil
	default:
		return nil, fmt.Errorf("blend: unknown weight policy %q", name)
	}
}

type tentPolicy struct{}

func (tentPolicy) Name() string {
	return "tent"
}

func (tentPolicy) Weights(control float32, out []float32) {
	n := len(out)
	if n == 0 {
		return
	}
	if n == 1 {
		out[0] = 1
		return
	}
	step := 1 / float32(n-1)
	for i := range out {
		out[i] = common.Tent(control, float32(i)*step, step)
	}
}

type twoPhasePolicy struct{}

func (twoPhasePolicy) Name() string {
	return "two_phase"
}

func (twoPhasePolicy) Weights(control float32, out []float32) {
	switch len(out) {
	case 0:
	case 1:
		out[0] = 1
	case 2:
		gate := common.Clamp01(control * 2)
		out[0] = 1 - gate
		out[1] = gate
	case 3:
		b := common.Clamp01(control * 2)
		a := common.Clamp01(1 - control*2)
		c := common.Clamp01(control*2 - 1)
		out[0] = a
		out[1] = b - c
		out[2] = c
	default:
		// Chains longer than three states have no two-phase definition.
		PolicyTent.Weights(control, out)
	}
}
