package model

// --- Transform & Skeleton Types ---

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	// Parents always precede their children in Skeleton.Bones.
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	// This is the inverse of the bone's world transform when the mesh was bound.
	InverseBindMatrix [16]float32

	// LocalTransform is the bone's bind-pose transform relative to its parent.
	LocalTransform Transform
}

// Skeleton represents a bone hierarchy for skeletal animation.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton.
	Bones []Bone

	// RootBoneIndices are indices of bones with no parent.
	RootBoneIndices []int32

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// BindPose returns a copy of every bone's local bind-pose transform, indexed like Bones.
func (s *Skeleton) BindPose() []Transform {
	if s == nil {
		return nil
	}
	out := make([]Transform, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.LocalTransform
	}
	return out
}

// --- Animation Types ---

// AnimationClip represents a single animation (idle, walk, run, wave, etc.).
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// Loop reports whether playback wraps at Duration. One-shot clips hold their last frame.
	Loop bool

	// Channels contains animation data for each animated bone.
	Channels []AnimationChannel
}

// AnimationChannel contains keyframe data for a single bone.
// Keyframes in each list are sorted by ascending Time.
type AnimationChannel struct {
	// BoneIndex is the index of the bone this channel animates.
	BoneIndex int32

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}
