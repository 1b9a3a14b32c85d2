package viewer

// Figure is one skeleton drawn by the viewer.
type Figure struct {
	// Parents holds each bone's parent index, -1 for roots. Parents precede their children.
	Parents []int32

	// Joints holds the model-space position of every bone, three floats per bone.
	Joints []float32

	// Tint is the line color as red, green and blue in [0, 1].
	Tint [3]float32
}

// floatsPerVertex is the vertex layout: position (x, y) followed by color (r, g, b).
const floatsPerVertex = 5

// AppendSegments appends one line segment per parented bone, from the parent joint to the
// bone joint, projected onto the front (x, y) plane into normalized device coordinates.
// Bones whose joint or parent joint falls outside Joints are skipped.
//
// Parameters:
//   - dst: the vertex slice to append to
//   - fig: the skeleton to draw
//   - originX: the horizontal NDC position of the figure's origin
//   - scale: NDC units per model unit
//   - baseline: the vertical NDC position of the model's ground plane
//
// Returns:
//   - []float32: dst with two vertices of floatsPerVertex floats appended per segment
func AppendSegments(dst []float32, fig Figure, originX, scale, baseline float32) []float32 {
	joints := len(fig.Joints) / 3
	for i, p := range fig.Parents {
		if p < 0 || int(p) >= joints || i >= joints {
			continue
		}
		px, py := fig.Joints[p*3], fig.Joints[p*3+1]
		cx, cy := fig.Joints[i*3], fig.Joints[i*3+1]
		dst = append(dst,
			originX+px*scale, baseline+py*scale, fig.Tint[0], fig.Tint[1], fig.Tint[2],
			originX+cx*scale, baseline+cy*scale, fig.Tint[0], fig.Tint[1], fig.Tint[2],
		)
	}
	return dst
}

// Columns returns the horizontal NDC center of each of n equally wide columns.
//
// Parameters:
//   - n: the number of columns
//
// Returns:
//   - []float32: the n column centers, left to right
func Columns(n int) []float32 {
	if n <= 0 {
		return nil
	}
	out := make([]float32, n)
	width := 2 / float32(n)
	for i := range out {
		out[i] = -1 + width*(float32(i)+0.5)
	}
	return out
}
