package blend

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTentPolicyThreeStates(t *testing.T) {
	cases := []struct {
		control float32
		want    []float32
	}{
		{0, []float32{1, 0, 0}},
		{0.25, []float32{0.5, 0.5, 0}},
		{0.5, []float32{0, 1, 0}},
		{0.75, []float32{0, 0.5, 0.5}},
		{1, []float32{0, 0, 1}},
	}
	for _, tc := range cases {
		out := make([]float32, 3)
		PolicyTent.Weights(tc.control, out)
		assert.InDeltaSlice(t, tc.want, out, common.WeightEpsilon, "control %v", tc.control)
	}
}

func TestTentPolicyTwoStates(t *testing.T) {
	out := make([]float32, 2)
	PolicyTent.Weights(0.3, out)
	assert.InDeltaSlice(t, []float32{0.7, 0.3}, out, common.WeightEpsilon)
}

func TestTwoPhasePolicyThreeStates(t *testing.T) {
	cases := []struct {
		control float32
		want    []float32
	}{
		{0, []float32{1, 0, 0}},
		{0.25, []float32{0.5, 0.5, 0}},
		{0.5, []float32{0, 1, 0}},
		{0.75, []float32{0, 0.5, 0.5}},
		{1, []float32{0, 0, 1}},
	}
	for _, tc := range cases {
		out := make([]float32, 3)
		PolicyTwoPhase.Weights(tc.control, out)
		assert.InDeltaSlice(t, tc.want, out, common.WeightEpsilon, "control %v", tc.control)
	}
}

func TestTwoPhasePolicyTwoStatesSaturatesAtMidpoint(t *testing.T) {
	out := make([]float32, 2)
	PolicyTwoPhase.Weights(0.25, out)
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, out, common.WeightEpsilon)
	PolicyTwoPhase.Weights(0.6, out)
	assert.InDeltaSlice(t, []float32{0, 1}, out, common.WeightEpsilon)
}

func TestPoliciesSumToOneAcrossRange(t *testing.T) {
	for _, p := range []WeightPolicy{PolicyTent, PolicyTwoPhase} {
		for n := MinStates; n <= MaxStates; n++ {
			out := make([]float32, n)
			for i := 0; i <= 100; i++ {
				c := float32(i) / 100
				p.Weights(c, out)
				for _, w := range out {
					require.GreaterOrEqual(t, w, float32(0), "%s n=%d c=%v: %v", p.Name(), n, c, out)
				}
				require.InDelta(t, float32(1), common.Sum(out), common.WeightEpsilon, "%s n=%d c=%v: %v", p.Name(), n, c, out)
			}
		}
	}
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]WeightPolicy{
		"":          PolicyTent,
		"tent":      PolicyTent,
		"Two_Phase": PolicyTwoPhase,
		"two-phase": PolicyTwoPhase,
	} {
		got, err := PolicyByName(name)
		require.NoError(t, err, "PolicyByName(%q)", name)
		assert.Equal(t, want, got, "PolicyByName(%q)", name)
	}
	_, err := PolicyByName("cubic")
	assert.Error(t, err)
}
