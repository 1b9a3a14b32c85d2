package clip

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

// source is the implementation of the Source interface.
type source struct {
	name     string
	anim     *model.AnimationClip
	loop     bool
	bindPose Pose
	released atomic.Bool
}

// Source is an opaque handle to one sampled animation clip (idle, walk, run, or a one-shot overlay).
//
// A Source never copies keyframe data: it references the AnimationClip owned by the Model
// and samples it on demand. Releasing a Source invalidates the handle; graphs refuse
// invalid handles at construction and overlay time.
type Source interface {
	// Name returns the clip identifier.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Duration returns the nominal clip length in seconds.
	//
	// Returns:
	//   - float32: the clip duration, 0 for an invalid handle
	Duration() float32

	// Loop reports whether playback wraps at Duration.
	//
	// Returns:
	//   - bool: true for looping clips, false for one-shot clips
	Loop() bool

	// Valid reports whether the handle references a clip and has not been released.
	//
	// Returns:
	//   - bool: true if the handle can be sampled
	Valid() bool

	// Sample writes the clip's pose at localTime into out.
	// Looping clips wrap localTime into [0, Duration); one-shot clips clamp it.
	// Bones without a channel keep the bind pose (or identity without one).
	//
	// Parameters:
	//   - localTime: the playback position in seconds
	//   - out: the destination pose
	Sample(localTime float32, out Pose)

	// Release invalidates the handle. Safe to call multiple times.
	Release()
}

var _ Source = &source{}

// NewSource creates a Source referencing the given clip.
//
// Parameters:
//   - anim: the clip to sample; a nil clip yields an invalid handle
//   - options: variadic list of SourceBuilderOption functions
//
// Returns:
//   - Source: the new clip handle
func NewSource(anim *model.AnimationClip, options ...SourceBuilderOption) Source {
	s := &source{anim: anim}
	if anim != nil {
		s.name = anim.Name
		s.loop = anim.Loop
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *source) Name() string {
	return s.name
}

func (s *source) Duration() float32 {
	if s.anim == nil {
		return 0
	}
	return s.anim.Duration
}

func (s *source) Loop() bool {
	return s.loop
}

func (s *source) Valid() bool {
	return s.anim != nil && !s.released.Load()
}

func (s *source) Release() {
	s.released.Store(true)
}

func (s *source) Sample(localTime float32, out Pose) {
	out.CopyFrom(s.bindPose)
	if !s.Valid() {
		return
	}

	t := s.localTime(localTime)
	for _, ch := range s.anim.Channels {
		if ch.BoneIndex < 0 || int(ch.BoneIndex) >= len(out) {
			continue
		}
		tr := &out[ch.BoneIndex]
		if len(ch.PositionKeys) > 0 {
			tr.Translation = sampleVector(ch.PositionKeys, t)
		}
		if len(ch.RotationKeys) > 0 {
			tr.Rotation = sampleRotation(ch.RotationKeys, t)
		}
		if len(ch.ScaleKeys) > 0 {
			tr.Scale = sampleVector(ch.ScaleKeys, t)
		}
	}
}

// localTime maps a playback position onto the clip's timeline.
func (s *source) localTime(t float32) float32 {
	d := s.anim.Duration
	if d <= 0 {
		return 0
	}
	if s.loop {
		t = float32(math.Mod(float64(t), float64(d)))
		if t < 0 {
			t += d
		}
		return t
	}
	return common.Clamp(t, 0, d)
}

// keySpan locates the keyframe pair surrounding t and the interpolation factor between them.
func keySpan(n int, timeAt func(int) float32, t float32) (int, int, float32) {
	if t <= timeAt(0) {
		return 0, 0, 0
	}
	if t >= timeAt(n-1) {
		return n - 1, n - 1, 0
	}
	hi := sort.Search(n, func(i int) bool { return timeAt(i) > t })
	lo := hi - 1
	span := timeAt(hi) - timeAt(lo)
	if span <= 0 {
		return hi, hi, 0
	}
	return lo, hi, (t - timeAt(lo)) / span
}

func sampleVector(keys []model.VectorKeyframe, t float32) [3]float32 {
	lo, hi, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if lo == hi {
		return keys[lo].Value
	}
	return common.LerpVec3(keys[lo].Value, keys[hi].Value, f)
}

func sampleRotation(keys []model.QuaternionKeyframe, t float32) [4]float32 {
	lo, hi, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if lo == hi {
		return common.NormalizeQuat(keys[lo].Value)
	}
	return common.NlerpQuat(keys[lo].Value, keys[hi].Value, f)
}
