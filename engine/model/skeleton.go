package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// NewSkeleton builds a Skeleton from bones whose LocalTransform holds the bind pose.
// It fills RootBoneIndices and BoneNameToIndex and computes every bone's InverseBindMatrix
// from the bind pose by walking the parent chain.
//
// Parameters:
//   - bones: the bones, ordered so that every parent precedes its children
//
// Returns:
//   - *Skeleton: the assembled skeleton
//   - error: an error if a parent index is out of order or a bind matrix is singular
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	s := &Skeleton{
		Bones:           bones,
		BoneNameToIndex: make(map[string]int32, len(bones)),
	}

	world := make([][16]float32, len(bones))
	var local [16]float32
	for i := range s.Bones {
		b := &s.Bones[i]
		if b.ParentIndex >= int32(i) {
			return nil, fmt.Errorf("bone %q: parent index %d must precede bone index %d", b.Name, b.ParentIndex, i)
		}
		if b.Name != "" {
			s.BoneNameToIndex[b.Name] = int32(i)
		}

		lt := b.LocalTransform
		common.ComposeTRS(local[:], lt.Translation, common.NormalizeQuat(lt.Rotation), lt.Scale)
		if b.ParentIndex < 0 {
			s.RootBoneIndices = append(s.RootBoneIndices, int32(i))
			world[i] = local
		} else {
			common.Mul4(world[i][:], world[b.ParentIndex][:], local[:])
		}

		if !common.Invert4(b.InverseBindMatrix[:], world[i][:]) {
			return nil, fmt.Errorf("bone %q: bind pose matrix is singular", b.Name)
		}
	}
	return s, nil
}
