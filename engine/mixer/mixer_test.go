package mixer

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantClip(name string, x float32, duration float32, loop bool) clip.Source {
	return clip.NewSource(&model.AnimationClip{
		Name:     name,
		Duration: duration,
		Loop:     loop,
		Channels: []model.AnimationChannel{{
			BoneIndex:    0,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		}},
	})
}

func newTestMixer(t *testing.T, arity int) Mixer {
	t.Helper()
	m, err := NewMixer(arity, WithLabel("test"))
	require.NoError(t, err)
	return m
}

func TestNewMixerRejectsZeroArity(t *testing.T) {
	_, err := NewMixer(0)
	assert.Error(t, err)
}

func TestConnectInputValidatesSlots(t *testing.T) {
	m := newTestMixer(t, 2)
	leaf := NewClipPlayable(constantClip("idle", 0, 1, true))

	require.ErrorIs(t, m.ConnectInput(2, leaf, 1), ErrSlotOutOfRange)
	require.ErrorIs(t, m.ConnectInput(0, leaf, -1), ErrNegativeWeight)
	require.ErrorIs(t, m.ConnectInput(0, nil, 1), ErrInvalidPlayable)
	require.NoError(t, m.ConnectInput(0, leaf, 1))
	require.ErrorIs(t, m.ConnectInput(0, leaf, 1), ErrSlotOccupied)
}

func TestDisconnectInputFreesSlot(t *testing.T) {
	m := newTestMixer(t, 2)
	leaf := NewClipPlayable(constantClip("wave", 0, 1, false))
	require.NoError(t, m.ConnectInput(1, leaf, 0.5))

	got, err := m.DisconnectInput(1)
	require.NoError(t, err)
	assert.Same(t, leaf, got)
	assert.Zero(t, m.InputWeight(1))

	_, err = m.DisconnectInput(1)
	require.ErrorIs(t, err, ErrSlotEmpty)
	require.NoError(t, m.ConnectInput(1, leaf, 0), "a freed slot is reusable")
}

func TestSetWeightsIsAllOrNothing(t *testing.T) {
	m := newTestMixer(t, 3)
	require.NoError(t, m.SetWeights(0.2, 0.3, 0.5))
	require.ErrorIs(t, m.SetWeights(1, -1, 0), ErrNegativeWeight)
	require.ErrorIs(t, m.SetWeights(1, 0), ErrWeightCount)
	assert.Equal(t, []float32{0.2, 0.3, 0.5}, m.Weights(), "rejected writes leave the weights unchanged")
}

func TestEvaluateBlendsConnectedInputs(t *testing.T) {
	m := newTestMixer(t, 2)
	require.NoError(t, m.ConnectInput(0, NewClipPlayable(constantClip("idle", 0, 1, true)), 0.25))
	require.NoError(t, m.ConnectInput(1, NewClipPlayable(constantClip("walk", 4, 1, true)), 0.75))

	out := clip.NewPose(1)
	m.Evaluate(out)
	assert.InDelta(t, float32(3), out[0].Translation[0], common.WeightEpsilon)
}

func TestNestedMixerEvaluates(t *testing.T) {
	loco := newTestMixer(t, 2)
	require.NoError(t, loco.ConnectInput(0, NewClipPlayable(constantClip("idle", 0, 1, true)), 0.5))
	require.NoError(t, loco.ConnectInput(1, NewClipPlayable(constantClip("walk", 2, 1, true)), 0.5))

	root := newTestMixer(t, 2)
	require.NoError(t, root.ConnectInput(0, loco, 1))

	out := clip.NewPose(1)
	root.Evaluate(out)
	assert.InDelta(t, float32(1), out[0].Translation[0], common.WeightEpsilon)
}

func TestAdvanceClampsOneShotLeaves(t *testing.T) {
	leaf := NewClipPlayable(constantClip("wave", 0, 1, false))
	m := newTestMixer(t, 1)
	require.NoError(t, m.ConnectInput(0, leaf, 0))
	m.Advance(0.75)
	m.Advance(0.75)
	assert.Equal(t, float32(1), leaf.Time())
	assert.True(t, leaf.Done())
}

func TestDestroyRejectsFurtherMutation(t *testing.T) {
	m := newTestMixer(t, 2)
	m.Destroy()
	m.Destroy()
	assert.False(t, m.Valid())
	require.ErrorIs(t, m.SetWeights(1, 0), ErrDestroyed)
	require.ErrorIs(t, m.ConnectInput(0, NewClipPlayable(constantClip("idle", 0, 1, true)), 1), ErrDestroyed)
}

func TestConcurrentReadersSeeWholeWeightVectors(t *testing.T) {
	m := newTestMixer(t, 3)
	require.NoError(t, m.SetWeights(1, 0, 0))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				_ = m.SetWeights(0, 1, 0)
			} else {
				_ = m.SetWeights(0, 0.5, 0.5)
			}
		}
	}()
	for i := 0; i < 2000; i++ {
		s := common.Sum(m.Weights())
		if !assert.InDelta(t, float32(1), s, common.WeightEpsilon, "observed a partial weight vector") {
			break
		}
	}
	wg.Wait()
}
