// Package config loads versioned YAML scene descriptions: the rig, its clips and the
// characters that blend them.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedVersion is returned for a document whose version is not 1.
var ErrUnsupportedVersion = errors.New("config: unsupported version")

type SceneConfig struct {
	Version    int               `yaml:"version"`
	Name       string            `yaml:"name"`
	TickRate   int               `yaml:"tick_rate"`
	Workers    int               `yaml:"workers"`
	Rig        RigConfig         `yaml:"rig"`
	Clips      []ClipConfig      `yaml:"clips"`
	Characters []CharacterConfig `yaml:"characters"`
}

type RigConfig struct {
	Bones []BoneConfig `yaml:"bones"`
}

type BoneConfig struct {
	Name        string      `yaml:"name"`
	Parent      string      `yaml:"parent"`
	Translation [3]float32  `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"`
	Scale       *[3]float32 `yaml:"scale"`
}

type ClipConfig struct {
	Name     string      `yaml:"name"`
	Duration float32     `yaml:"duration"`
	Loop     bool        `yaml:"loop"`
	Keys     []KeyConfig `yaml:"keys"`
}

// KeyConfig is one keyframe on one bone. Any of the three components may be omitted.
type KeyConfig struct {
	Bone        string      `yaml:"bone"`
	Time        float32     `yaml:"time"`
	Translation *[3]float32 `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"`
	Scale       *[3]float32 `yaml:"scale"`
}

type CharacterConfig struct {
	Name     string          `yaml:"name"`
	Topology string          `yaml:"topology"`
	Policy   string          `yaml:"policy"`
	States   []string        `yaml:"states"`
	Weight   float32         `yaml:"weight"`
	Overlays []OverlayConfig `yaml:"overlays"`
}

type OverlayConfig struct {
	Name          string  `yaml:"name"`
	Clip          string  `yaml:"clip"`
	BlendDuration float32 `yaml:"blend_duration"`
}

// TickRateOrDefault returns the configured tick rate, defaulting to 60 if not set.
func (c *SceneConfig) TickRateOrDefault() int {
	if c.TickRate <= 0 {
		return 60
	}
	return c.TickRate
}

// WorkersOrDefault returns the configured worker count, defaulting to 4 if not set.
func (c *SceneConfig) WorkersOrDefault() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// Character returns the character with the given name, or nil.
func (c *SceneConfig) Character(name string) *CharacterConfig {
	for i := range c.Characters {
		if c.Characters[i].Name == name {
			return &c.Characters[i]
		}
	}
	return nil
}

func Load(path string) (*SceneConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(b []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("%w: scene version %d", ErrUnsupportedVersion, cfg.Version)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross references between bones, clips and characters.
func (c *SceneConfig) Validate() error {
	if len(c.Rig.Bones) == 0 {
		return fmt.Errorf("rig: no bones")
	}
	bones := make(map[string]bool, len(c.Rig.Bones))
	for _, b := range c.Rig.Bones {
		if b.Name == "" {
			return fmt.Errorf("rig: bone without a name")
		}
		if bones[b.Name] {
			return fmt.Errorf("rig: duplicate bone %q", b.Name)
		}
		if b.Parent != "" && !bones[b.Parent] {
			return fmt.Errorf("rig: bone %q: parent %q must be declared first", b.Name, b.Parent)
		}
		bones[b.Name] = true
	}

	clips := make(map[string]bool, len(c.Clips))
	for _, cl := range c.Clips {
		if cl.Name == "" {
			return fmt.Errorf("clips: clip without a name")
		}
		if clips[cl.Name] {
			return fmt.Errorf("clips: duplicate clip %q", cl.Name)
		}
		if cl.Duration < 0 {
			return fmt.Errorf("clip %q: negative duration %v", cl.Name, cl.Duration)
		}
		for _, k := range cl.Keys {
			if !bones[k.Bone] {
				return fmt.Errorf("clip %q: unknown bone %q", cl.Name, k.Bone)
			}
		}
		clips[cl.Name] = true
	}

	names := make(map[string]bool, len(c.Characters))
	for _, ch := range c.Characters {
		if ch.Name == "" || names[ch.Name] {
			return fmt.Errorf("characters: missing or duplicate name %q", ch.Name)
		}
		names[ch.Name] = true
		if _, err := blend.ParseTopology(ch.Topology); err != nil {
			return fmt.Errorf("character %q: %w", ch.Name, err)
		}
		if _, err := blend.PolicyByName(ch.Policy); err != nil {
			return fmt.Errorf("character %q: %w", ch.Name, err)
		}
		if len(ch.States) < blend.MinStates || len(ch.States) > blend.MaxStates {
			return fmt.Errorf("character %q: %w: %d states", ch.Name, blend.ErrInvalidTopology, len(ch.States))
		}
		for _, s := range ch.States {
			if !clips[s] {
				return fmt.Errorf("character %q: unknown state clip %q", ch.Name, s)
			}
		}
		for _, o := range ch.Overlays {
			if !clips[o.Clip] {
				return fmt.Errorf("character %q: overlay %q: unknown clip %q", ch.Name, o.Name, o.Clip)
			}
		}
	}
	return nil
}

// BuildModel assembles the rig and every clip into a Model.
func (c *SceneConfig) BuildModel() (model.Model, error) {
	bones := make([]model.Bone, len(c.Rig.Bones))
	index := make(map[string]int32, len(bones))
	for i, b := range c.Rig.Bones {
		lt := model.IdentityTransform()
		lt.Translation = b.Translation
		if b.Rotation != nil {
			lt.Rotation = *b.Rotation
		}
		if b.Scale != nil {
			lt.Scale = *b.Scale
		}
		parent := int32(-1)
		if b.Parent != "" {
			p, ok := index[b.Parent]
			if !ok {
				return nil, fmt.Errorf("rig: bone %q: unknown parent %q", b.Name, b.Parent)
			}
			parent = p
		}
		bones[i] = model.Bone{Name: b.Name, ParentIndex: parent, LocalTransform: lt}
		index[b.Name] = int32(i)
	}
	skeleton, err := model.NewSkeleton(bones)
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}

	anims := make([]*model.AnimationClip, 0, len(c.Clips))
	for _, cl := range c.Clips {
		anim, err := cl.build(index)
		if err != nil {
			return nil, err
		}
		anims = append(anims, anim)
	}

	name := c.Name
	if name == "" {
		name = "scene"
	}
	return model.NewModel(
		model.WithName(name),
		model.WithSkeleton(skeleton),
		model.WithAnimations(anims),
	), nil
}

// build groups keys into one channel per bone, sorted by time.
func (cl ClipConfig) build(index map[string]int32) (*model.AnimationClip, error) {
	channels := make(map[int32]*model.AnimationChannel)
	var order []int32
	for _, k := range cl.Keys {
		bi, ok := index[k.Bone]
		if !ok {
			return nil, fmt.Errorf("clip %q: unknown bone %q", cl.Name, k.Bone)
		}
		ch := channels[bi]
		if ch == nil {
			ch = &model.AnimationChannel{BoneIndex: bi}
			channels[bi] = ch
			order = append(order, bi)
		}
		if k.Translation != nil {
			ch.PositionKeys = append(ch.PositionKeys, model.VectorKeyframe{Time: k.Time, Value: *k.Translation})
		}
		if k.Rotation != nil {
			ch.RotationKeys = append(ch.RotationKeys, model.QuaternionKeyframe{Time: k.Time, Value: *k.Rotation})
		}
		if k.Scale != nil {
			ch.ScaleKeys = append(ch.ScaleKeys, model.VectorKeyframe{Time: k.Time, Value: *k.Scale})
		}
	}

	anim := &model.AnimationClip{Name: cl.Name, Duration: cl.Duration, Loop: cl.Loop}
	for _, bi := range order {
		ch := channels[bi]
		sort.SliceStable(ch.PositionKeys, func(i, j int) bool { return ch.PositionKeys[i].Time < ch.PositionKeys[j].Time })
		sort.SliceStable(ch.RotationKeys, func(i, j int) bool { return ch.RotationKeys[i].Time < ch.RotationKeys[j].Time })
		sort.SliceStable(ch.ScaleKeys, func(i, j int) bool { return ch.ScaleKeys[i].Time < ch.ScaleKeys[j].Time })
		anim.Channels = append(anim.Channels, *ch)
	}
	return anim, nil
}
