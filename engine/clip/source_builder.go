package clip

// SourceBuilderOption is a functional option for configuring a Source during construction.
type SourceBuilderOption func(*source)

// WithName overrides the clip name reported by the Source.
//
// Parameters:
//   - name: the handle name
//
// Returns:
//   - SourceBuilderOption: option function to apply
func WithName(name string) SourceBuilderOption {
	return func(s *source) {
		s.name = name
	}
}

// WithLoop overrides whether the Source wraps playback at its duration.
//
// Parameters:
//   - loop: true to loop, false for one-shot playback
//
// Returns:
//   - SourceBuilderOption: option function to apply
func WithLoop(loop bool) SourceBuilderOption {
	return func(s *source) {
		s.loop = loop
	}
}

// WithBindPose sets the pose used for bones the clip does not animate.
// The pose is referenced, not copied.
//
// Parameters:
//   - pose: the bind pose
//
// Returns:
//   - SourceBuilderOption: option function to apply
func WithBindPose(pose Pose) SourceBuilderOption {
	return func(s *source) {
		s.bindPose = pose
	}
}
