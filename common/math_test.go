package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{2.5, 1},
		{float32(math.NaN()), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Clamp01(tc.in), "Clamp01(%v)", tc.in)
	}
}

func TestTent(t *testing.T) {
	cases := []struct {
		x, center, half, want float32
	}{
		{0.5, 0.5, 0.5, 1},
		{0.25, 0.5, 0.5, 0.5},
		{0, 0.5, 0.5, 0},
		{1, 0.5, 0.5, 0},
		{0.2, 0, 1, 0.8},
		{1.5, 0.5, 0.5, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Tent(tc.x, tc.center, tc.half), WeightEpsilon,
			"Tent(%v, %v, %v)", tc.x, tc.center, tc.half)
	}
}

func TestNlerpQuatTakesShortestArc(t *testing.T) {
	a := [4]float32{0, 0, 0, 1}
	b := [4]float32{0, 0, 0, -1}
	got := NlerpQuat(a, b, 0.5)
	assert.InDelta(t, float32(1), got[3], WeightEpsilon, "expected identity rotation, got %v", got)
}

func TestComposeTRSIdentity(t *testing.T) {
	out := make([]float32, 16)
	ComposeTRS(out, [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	want := make([]float32, 16)
	Identity(want)
	assert.InDeltaSlice(t, want, out, WeightEpsilon)
}

func TestComposeTRSTranslationAndScale(t *testing.T) {
	out := make([]float32, 16)
	ComposeTRS(out, [3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})
	assert.Equal(t, []float32{2, 2, 2}, []float32{out[0], out[5], out[10]}, "scale diagonal")
	assert.Equal(t, []float32{1, 2, 3}, out[12:15], "translation column")
}
