package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/engine/mixer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGPUSink returns a sink on whatever adapter the machine offers, or skips.
func newTestGPUSink(t *testing.T, boneCount int) GPUSink {
	t.Helper()
	sink, err := NewGPUSink(boneCount, WithGPULabel("Test Palette"), WithForceFallbackAdapter(true))
	if err != nil {
		sink, err = NewGPUSink(boneCount, WithGPULabel("Test Palette"))
	}
	if err != nil {
		t.Skipf("no WebGPU adapter available: %v", err)
	}
	t.Cleanup(sink.Release)
	return sink
}

func TestNewGPUSinkRejectsEmptyPalette(t *testing.T) {
	_, err := NewGPUSink(0)
	assert.Error(t, err)
}

func TestGPUSinkWritePalette(t *testing.T) {
	sink := newTestGPUSink(t, 2)
	assert.Equal(t, uint64(2*16*4), sink.Size())
	assert.NotNil(t, sink.Buffer())
	assert.NotNil(t, sink.Device())

	palette := append(identity(), identity()...)
	require.NoError(t, sink.WritePalette(palette))
	require.NoError(t, sink.WritePalette(palette[:16]), "a shorter palette fits the buffer")
	assert.Equal(t, uint64(2), sink.Uploads())

	err := sink.WritePalette(make([]float32, 3*16))
	require.Error(t, err)
	assert.Equal(t, uint64(2), sink.Uploads(), "rejected palettes are not counted")
}

func TestGPUSinkReceivesAnimatorFrames(t *testing.T) {
	sink := newTestGPUSink(t, 2)
	a, err := NewAnimator(twoBoneSkeleton(t), WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, a.Bind(mixer.NewClipPlayable(shiftClip(1))))

	for i := 0; i < 3; i++ {
		require.NoError(t, a.PrepareFrame(0.016))
	}
	assert.Equal(t, uint64(3), sink.Uploads())

	a.Release()
	assert.Nil(t, sink.Buffer(), "releasing the animator releases its sinks")
	assert.Error(t, sink.WritePalette(identity()))
}
