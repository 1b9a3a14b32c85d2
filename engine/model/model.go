package model

// model is the implementation of the Model interface.
type model struct {
	name       string
	skeleton   *Skeleton
	animations []*AnimationClip
}

// Model defines the interface for a character rig.
// A Model is a read-only container holding the skeleton hierarchy and the animation clips
// that can be sampled against it. Clip sources reference the clips held here; the Model
// itself never copies keyframe data.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skeleton retrieves the bone hierarchy for this model.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// BoneCount returns the number of bones in the skeleton, or 0 without a skeleton.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int

	// Animation returns the clip with the given name, or nil if not found.
	//
	// Parameters:
	//   - name: the animation clip name
	//
	// Returns:
	//   - *AnimationClip: the clip or nil
	Animation(name string) *AnimationClip
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) BoneCount() int {
	if m.skeleton == nil {
		return 0
	}
	return len(m.skeleton.Bones)
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) Animation(name string) *AnimationClip {
	if i := m.GetAnimationIndex(name); i >= 0 {
		return m.animations[i]
	}
	return nil
}
