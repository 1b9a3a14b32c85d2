package animator

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/mixer"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	writes   int
	last     []float32
	err      error
	released int
}

func (s *recordingSink) WritePalette(palette []float32) error {
	s.writes++
	s.last = append(s.last[:0], palette...)
	return s.err
}

func (s *recordingSink) Release() {
	s.released++
}

func twoBoneSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	root := model.Bone{Name: "hips", ParentIndex: -1, LocalTransform: model.IdentityTransform()}
	child := model.Bone{Name: "spine", ParentIndex: 0, LocalTransform: model.IdentityTransform()}
	child.LocalTransform.Translation = [3]float32{0, 1, 0}
	s, err := model.NewSkeleton([]model.Bone{root, child})
	require.NoError(t, err)
	return s
}

func shiftClip(x float32) clip.Source {
	return clip.NewSource(&model.AnimationClip{
		Name:     "shift",
		Duration: 1,
		Loop:     true,
		Channels: []model.AnimationChannel{{
			BoneIndex:    0,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		}},
	}, clip.WithBindPose(clip.Pose{model.IdentityTransform(), {Translation: [3]float32{0, 1, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}}}))
}

func identity() []float32 {
	m := make([]float32, 16)
	common.Identity(m)
	return m
}

func TestBindPosePaletteIsIdentity(t *testing.T) {
	a, err := NewAnimator(twoBoneSkeleton(t))
	require.NoError(t, err)

	p := a.Palette()
	require.Len(t, p, 32)
	assert.InDeltaSlice(t, identity(), p[:16], common.WeightEpsilon)
	assert.InDeltaSlice(t, identity(), p[16:], common.WeightEpsilon)
}

func TestPrepareFrameRequiresBinding(t *testing.T) {
	a, _ := NewAnimator(twoBoneSkeleton(t))
	require.ErrorIs(t, a.PrepareFrame(0.016), ErrNotBound)
}

func TestBindTwiceFails(t *testing.T) {
	a, _ := NewAnimator(twoBoneSkeleton(t))
	leaf := mixer.NewClipPlayable(shiftClip(2))
	require.NoError(t, a.Bind(leaf))
	require.ErrorIs(t, a.Bind(leaf), ErrAlreadyBound)

	a.Unbind()
	a.Unbind()
	assert.False(t, a.Bound())
	require.NoError(t, a.Bind(leaf), "rebind after Unbind")
}

func TestBindRejectsInvalidPlayable(t *testing.T) {
	a, _ := NewAnimator(twoBoneSkeleton(t))
	leaf := mixer.NewClipPlayable(shiftClip(2))
	leaf.Destroy()
	require.ErrorIs(t, a.Bind(leaf), mixer.ErrInvalidPlayable)
}

func TestPrepareFramePropagatesHierarchy(t *testing.T) {
	sink := &recordingSink{}
	a, _ := NewAnimator(twoBoneSkeleton(t), WithSink(sink))
	require.NoError(t, a.Bind(mixer.NewClipPlayable(shiftClip(2))))
	require.NoError(t, a.PrepareFrame(0.016))

	assert.Equal(t, [3]float32{2, 0, 0}, a.Pose()[0].Translation)
	p := a.Palette()
	for bone := 0; bone < 2; bone++ {
		assert.InDelta(t, float32(2), p[bone*16+12], common.WeightEpsilon, "bone %d palette x", bone)
		assert.InDelta(t, float32(0), p[bone*16+13], common.WeightEpsilon, "bone %d palette y", bone)
	}
	assert.Equal(t, 1, sink.writes)
	assert.Len(t, sink.last, 32)
	assert.Equal(t, uint64(1), a.Frames())
}

func TestJointsFollowWorldTransforms(t *testing.T) {
	a, _ := NewAnimator(twoBoneSkeleton(t))
	assert.InDeltaSlice(t, []float32{0, 0, 0, 0, 1, 0}, a.Joints(), common.WeightEpsilon)

	require.NoError(t, a.Bind(mixer.NewClipPlayable(shiftClip(2))))
	require.NoError(t, a.PrepareFrame(0.016))

	// The palette removes the bind offset; joints keep it.
	assert.InDeltaSlice(t, []float32{2, 0, 0, 2, 1, 0}, a.Joints(), common.WeightEpsilon)
}

func TestPrepareFrameEvaluatesBlendTree(t *testing.T) {
	m, err := mixer.NewMixer(2)
	require.NoError(t, err)
	require.NoError(t, m.ConnectInput(0, mixer.NewClipPlayable(shiftClip(0)), 0.5))
	require.NoError(t, m.ConnectInput(1, mixer.NewClipPlayable(shiftClip(4)), 0.5))

	a, _ := NewAnimator(twoBoneSkeleton(t))
	require.NoError(t, a.Bind(m))
	require.NoError(t, a.PrepareFrame(0.1))
	assert.InDelta(t, float32(2), a.Pose()[0].Translation[0], common.WeightEpsilon)
}

func TestSinkErrorsAreJoined(t *testing.T) {
	errA := errors.New("a")
	good := &recordingSink{}
	bad := &recordingSink{err: errA}
	a, _ := NewAnimator(twoBoneSkeleton(t), WithSink(bad), WithSink(good))
	require.NoError(t, a.Bind(mixer.NewClipPlayable(shiftClip(1))))

	require.ErrorIs(t, a.PrepareFrame(0.016), errA)
	assert.Equal(t, 1, good.writes, "later sinks should still be written")
}

func TestReleaseIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	a, _ := NewAnimator(twoBoneSkeleton(t))
	a.AddSink(sink)
	require.NoError(t, a.Bind(mixer.NewClipPlayable(shiftClip(1))))

	a.Release()
	a.Release()
	assert.Equal(t, 1, sink.released)
	require.ErrorIs(t, a.PrepareFrame(0.016), ErrReleased)
	require.ErrorIs(t, a.Bind(mixer.NewClipPlayable(shiftClip(1))), ErrReleased)
}

func TestNewAnimatorRejectsEmptySkeleton(t *testing.T) {
	_, err := NewAnimator(nil)
	assert.Error(t, err)
	_, err = NewAnimator(&model.Skeleton{})
	assert.Error(t, err)
}
