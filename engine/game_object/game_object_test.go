package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/blend"
	"github.com/Carmen-Shannon/oxy-blend/engine/config"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantClip(name string, x, duration float32, loop bool) *model.AnimationClip {
	return &model.AnimationClip{
		Name:     name,
		Duration: duration,
		Loop:     loop,
		Channels: []model.AnimationChannel{{
			BoneIndex:    0,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		}},
	}
}

func testModel(t *testing.T) model.Model {
	t.Helper()
	skeleton, err := model.NewSkeleton([]model.Bone{{Name: "root", ParentIndex: -1, LocalTransform: model.IdentityTransform()}})
	require.NoError(t, err)
	return model.NewModel(
		model.WithName("rig"),
		model.WithSkeleton(skeleton),
		model.WithAnimation(constantClip("idle", 0, 1, true)),
		model.WithAnimation(constantClip("walk", 2, 1, true)),
		model.WithAnimation(constantClip("run", 4, 1, true)),
		model.WithAnimation(constantClip("wave", 10, 1, false)),
	)
}

func newCharacter(t *testing.T, options ...GameObjectBuilderOption) GameObject {
	t.Helper()
	base := []GameObjectBuilderOption{
		WithName("hero"),
		WithModel(testModel(t)),
		WithStates("idle", "walk", "run"),
		WithTopology(blend.TopologyLayered),
		WithOverlay("wave", "wave", 0.25),
	}
	obj, err := NewGameObject(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(obj.Destroy)
	return obj
}

func TestUpdateBlendsFromWeight(t *testing.T) {
	obj := newCharacter(t)
	obj.SetWeight(0.25)
	require.NoError(t, obj.Update(0.016))
	assert.InDelta(t, float32(1), obj.Pose()[0].Translation[0], common.WeightEpsilon, "half idle, half walk")
	assert.Equal(t, uint64(1), obj.Ticks())
}

func TestWeightIsClampedOnApply(t *testing.T) {
	obj := newCharacter(t)
	obj.SetWeight(5)
	require.NoError(t, obj.Update(0.016))
	assert.Equal(t, float32(5), obj.Weight(), "the stored weight is untouched")
	assert.InDeltaSlice(t, []float32{0, 0, 1}, obj.Controller().Weights(), common.WeightEpsilon)
}

func TestTriggerOverlayStartsOnNextUpdate(t *testing.T) {
	obj := newCharacter(t)
	require.True(t, obj.TriggerOverlay("wave"))
	assert.False(t, obj.Controller().OverlayActive(), "the overlay must not start before Update")

	require.NoError(t, obj.Update(0.125))
	assert.True(t, obj.Controller().OverlayActive())
	assert.InDelta(t, float32(0.5), obj.Controller().OverlayWeight(), common.WeightEpsilon)

	// 0.25 in, 0.5 hold, 0.25 out; one tick already ran.
	for i := 0; i < 7; i++ {
		require.NoError(t, obj.Update(0.125))
	}
	assert.False(t, obj.Controller().OverlayActive(), "phase %v", obj.Controller().OverlayPhase())
}

func TestTriggerOverlayUnknownName(t *testing.T) {
	obj := newCharacter(t)
	assert.False(t, obj.TriggerOverlay("bow"), "an unknown overlay is not queued")
	require.ErrorIs(t, obj.PlayOverlay("bow"), blend.ErrInvalidHandle)
}

func TestQueuedDuplicateTriggerIsDropped(t *testing.T) {
	obj := newCharacter(t)
	obj.TriggerOverlay("wave")
	obj.TriggerOverlay("wave")
	require.NoError(t, obj.Update(0.125), "a rejected trigger must not fail the tick")
	require.ErrorIs(t, obj.PlayOverlay("wave"), blend.ErrOverlayInProgress)
}

func TestTriggerQueueCapacity(t *testing.T) {
	obj := newCharacter(t, WithTriggerCapacity(1))
	assert.True(t, obj.TriggerOverlay("wave"))
	assert.False(t, obj.TriggerOverlay("wave"), "a full queue refuses triggers")
}

func TestDisabledObjectIsSkipped(t *testing.T) {
	obj := newCharacter(t, WithEnabled(false))
	require.NoError(t, obj.Update(0.016))
	assert.Zero(t, obj.Ticks())
}

func TestDestroyIsIdempotent(t *testing.T) {
	obj := newCharacter(t)
	obj.Destroy()
	obj.Destroy()
	assert.False(t, obj.Live())
	assert.False(t, obj.Controller().Live())
	assert.False(t, obj.Animator().Bound())
	require.ErrorIs(t, obj.Update(0.016), blend.ErrUseAfterDestroy)
	assert.False(t, obj.TriggerOverlay("wave"), "a destroyed object refuses triggers")
}

func TestUnknownStateClip(t *testing.T) {
	_, err := NewGameObject(WithModel(testModel(t)), WithStates("idle", "jog"))
	require.ErrorIs(t, err, blend.ErrInvalidHandle)
}

func TestMissingModel(t *testing.T) {
	_, err := NewGameObject(WithStates("idle", "walk"))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	ch := &config.CharacterConfig{
		Name:     "npc",
		Topology: "flat",
		Policy:   "two_phase",
		States:   []string{"idle", "walk"},
		Weight:   0.75,
	}
	obj, err := FromConfig(ch, testModel(t))
	require.NoError(t, err)
	defer obj.Destroy()

	assert.Equal(t, "npc", obj.Name())
	assert.Equal(t, float32(0.75), obj.Weight())
	assert.Equal(t, blend.PolicyTwoPhase, obj.Controller().Policy())

	require.NoError(t, obj.Update(0.016))
	assert.InDeltaSlice(t, []float32{0, 1}, obj.Controller().Weights(), common.WeightEpsilon,
		"two-phase at 0.75 with two states saturates walk")
	require.ErrorIs(t, obj.PlayOverlay("wave"), blend.ErrInvalidHandle, "a flat character has no configured overlays")
}
