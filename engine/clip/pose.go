package clip

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
)

// Pose is a set of local bone transforms indexed like Skeleton.Bones.
type Pose []model.Transform

// NewPose allocates a pose of boneCount identity transforms.
//
// Parameters:
//   - boneCount: the number of bones
//
// Returns:
//   - Pose: the new pose
func NewPose(boneCount int) Pose {
	p := make(Pose, boneCount)
	p.SetIdentity()
	return p
}

// SetIdentity resets every transform in the pose to identity.
func (p Pose) SetIdentity() {
	for i := range p {
		p[i] = model.IdentityTransform()
	}
}

// CopyFrom copies src into p. When src is shorter than p the remaining bones are set to identity.
func (p Pose) CopyFrom(src Pose) {
	n := copy(p, src)
	for i := n; i < len(p); i++ {
		p[i] = model.IdentityTransform()
	}
}

// Clone returns an independent copy of the pose.
func (p Pose) Clone() Pose {
	out := make(Pose, len(p))
	copy(out, p)
	return out
}

// Blend writes the weighted combination of inputs into out.
// Translation and scale are averaged linearly; rotations are summed after aligning each
// one to the hemisphere of the first contributing input, then normalized. Inputs with a
// weight <= 0 are skipped. If no input contributes, out receives fallback (or identity
// when fallback is nil).
//
// Parameters:
//   - out: the destination pose
//   - inputs: the input poses, each at least len(out) long
//   - weights: one weight per input
//   - fallback: the pose used when the total weight is zero
func Blend(out Pose, inputs []Pose, weights []float32, fallback Pose) {
	var total float32
	for i := range inputs {
		if i < len(weights) && weights[i] > 0 {
			total += weights[i]
		}
	}
	if total <= 0 {
		out.CopyFrom(fallback)
		return
	}

	for b := range out {
		var t, s [3]float32
		var q, ref [4]float32
		haveRef := false
		for i, in := range inputs {
			if i >= len(weights) || weights[i] <= 0 || b >= len(in) {
				continue
			}
			w := weights[i] / total
			src := in[b]
			for k := 0; k < 3; k++ {
				t[k] += src.Translation[k] * w
				s[k] += src.Scale[k] * w
			}
			r := src.Rotation
			if !haveRef {
				ref = r
				haveRef = true
			} else if common.DotQuat(ref, r) < 0 {
				r = [4]float32{-r[0], -r[1], -r[2], -r[3]}
			}
			for k := 0; k < 4; k++ {
				q[k] += r[k] * w
			}
		}
		out[b] = model.Transform{
			Translation: t,
			Rotation:    common.NormalizeQuat(q),
			Scale:       s,
		}
	}
}
