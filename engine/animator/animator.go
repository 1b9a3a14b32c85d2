// Package animator samples a bound playable tree once per frame and turns the resulting
// local pose into a skinning palette for downstream consumers.
package animator

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/mixer"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

var (
	// ErrAlreadyBound is returned by Bind when a root is already bound.
	ErrAlreadyBound = errors.New("animator: already bound")

	// ErrNotBound is returned by PrepareFrame before Bind or after Unbind.
	ErrNotBound = errors.New("animator: not bound")

	// ErrReleased is returned by every operation once Release has been called.
	ErrReleased = errors.New("animator: released")
)

// PoseSink receives the skinning palette after every PrepareFrame.
type PoseSink interface {
	// WritePalette uploads one column-major 4x4 matrix per bone.
	//
	// Parameters:
	//   - palette: 16 floats per bone, valid only for the duration of the call
	//
	// Returns:
	//   - error: an error if the upload failed
	WritePalette(palette []float32) error

	// Release frees the sink's resources.
	Release()
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	label    string
	skeleton *model.Skeleton
	root     mixer.Playable
	sinks    []PoseSink

	pose    clip.Pose
	world   []float32
	palette []float32
	local   [16]float32

	frames   uint64
	released bool
}

// Animator is the output binding of a blend graph.
//
// Each PrepareFrame advances the bound tree by the frame delta, evaluates it into a local
// pose, composes the skeleton hierarchy into a skinning palette and hands the palette to
// every registered PoseSink. PrepareFrame is serialized by an internal mutex, so the
// bound tree is evaluated by one goroutine at a time. Pose and Palette return copies and
// may be called from any goroutine.
type Animator interface {
	// Label returns the animator's debug label.
	Label() string

	// Skeleton returns the skeleton the palette is computed for.
	Skeleton() *model.Skeleton

	// BoneCount returns the number of bones in the pose.
	BoneCount() int

	// Bind attaches the root playable that PrepareFrame samples.
	//
	// Parameters:
	//   - root: the root of the playable tree
	//
	// Returns:
	//   - error: ErrAlreadyBound, ErrReleased, or mixer.ErrInvalidPlayable
	Bind(root mixer.Playable) error

	// Unbind detaches the current root. Safe to call when nothing is bound.
	Unbind()

	// Bound reports whether a root is attached.
	Bound() bool

	// AddSink registers a consumer of the skinning palette.
	//
	// Parameters:
	//   - sink: the palette consumer
	AddSink(sink PoseSink)

	// PrepareFrame advances the bound tree by deltaTime, evaluates the pose, rebuilds the
	// palette and pushes it to every sink. Sink errors are joined into the returned error
	// after every sink has been written.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: ErrNotBound, ErrReleased, or joined sink errors
	PrepareFrame(deltaTime float32) error

	// Pose returns a copy of the most recently evaluated local pose.
	Pose() clip.Pose

	// Palette returns a copy of the most recent skinning palette.
	Palette() []float32

	// Joints returns the model-space position of every bone, three floats per bone, taken
	// from the same world matrices the palette was built from.
	//
	// Returns:
	//   - []float32: x, y, z per bone in skeleton order
	Joints() []float32

	// Frames returns the number of frames prepared so far.
	Frames() uint64

	// Release unbinds and releases every sink. Safe to call multiple times.
	Release()
}

var _ Animator = &animator{}

// NewAnimator creates an unbound Animator for the given skeleton.
// The initial pose is the skeleton's bind pose.
//
// Parameters:
//   - skeleton: the bone hierarchy (must contain at least one bone)
//   - options: variadic list of AnimatorBuilderOption functions
//
// Returns:
//   - Animator: the new animator
//   - error: an error if the skeleton is empty
func NewAnimator(skeleton *model.Skeleton, options ...AnimatorBuilderOption) (Animator, error) {
	if skeleton == nil || len(skeleton.Bones) == 0 {
		return nil, fmt.Errorf("animator: skeleton has no bones")
	}
	n := len(skeleton.Bones)
	a := &animator{
		mu:       &sync.Mutex{},
		label:    "Animator",
		skeleton: skeleton,
		pose:     clip.Pose(skeleton.BindPose()),
		world:    make([]float32, 16*n),
		palette:  make([]float32, 16*n),
	}
	for _, opt := range options {
		opt(a)
	}
	a.buildPalette()
	return a, nil
}

func (a *animator) Label() string {
	return a.label
}

func (a *animator) Skeleton() *model.Skeleton {
	return a.skeleton
}

func (a *animator) BoneCount() int {
	return len(a.pose)
}

func (a *animator) Bind(root mixer.Playable) error {
	if root == nil || !root.Valid() {
		return mixer.ErrInvalidPlayable
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrReleased
	}
	if a.root != nil {
		return ErrAlreadyBound
	}
	a.root = root
	return nil
}

func (a *animator) Unbind() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root = nil
}

func (a *animator) Bound() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root != nil
}

func (a *animator) AddSink(sink PoseSink) {
	if sink == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, sink)
}

func (a *animator) PrepareFrame(deltaTime float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrReleased
	}
	if a.root == nil {
		return ErrNotBound
	}
	if !(deltaTime > 0) {
		deltaTime = 0
	}

	a.root.Advance(deltaTime)
	a.root.Evaluate(a.pose)
	a.buildPalette()
	a.frames++

	var errs []error
	for _, sink := range a.sinks {
		if err := sink.WritePalette(a.palette); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildPalette composes local transforms down the hierarchy and multiplies each bone's
// world matrix by its inverse bind matrix. Parents precede their children in Bones.
func (a *animator) buildPalette() {
	for i, bone := range a.skeleton.Bones {
		tr := a.pose[i]
		common.ComposeTRS(a.local[:], tr.Translation, tr.Rotation, tr.Scale)

		world := a.world[i*16 : i*16+16]
		if p := bone.ParentIndex; p >= 0 && int(p) < i {
			common.Mul4(world, a.world[p*16:p*16+16], a.local[:])
		} else {
			copy(world, a.local[:])
		}
		common.Mul4(a.palette[i*16:i*16+16], world, bone.InverseBindMatrix[:])
	}
}

func (a *animator) Pose() clip.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose.Clone()
}

func (a *animator) Palette() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float32, len(a.palette))
	copy(out, a.palette)
	return out
}

func (a *animator) Joints() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.skeleton.Bones)
	out := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		copy(out[i*3:i*3+3], a.world[i*16+12:i*16+15])
	}
	return out
}

func (a *animator) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

func (a *animator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	a.released = true
	a.root = nil
	for _, sink := range a.sinks {
		sink.Release()
	}
	a.sinks = nil
	log.Printf("[%s] released after %d frames", a.label, a.frames)
}
