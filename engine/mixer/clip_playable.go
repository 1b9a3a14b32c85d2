package mixer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

// clipPlayable is the implementation of the ClipPlayable interface.
type clipPlayable struct {
	mu        *sync.Mutex
	source    clip.Source
	time      float32
	speed     float32
	destroyed bool
}

// ClipPlayable is a leaf node that samples one clip Source at its own local time.
// The Source is referenced, never owned: destroying the leaf does not release the clip.
type ClipPlayable interface {
	Playable

	// Source returns the clip handle sampled by this leaf.
	//
	// Returns:
	//   - clip.Source: the referenced clip
	Source() clip.Source

	// Time returns the current local playback time in seconds.
	//
	// Returns:
	//   - float32: the local time
	Time() float32

	// SetTime sets the local playback time.
	//
	// Parameters:
	//   - t: the playback time in seconds
	SetTime(t float32)

	// SetSpeed sets the playback speed multiplier applied in Advance.
	//
	// Parameters:
	//   - speed: the multiplier (1.0 = normal)
	SetSpeed(speed float32)

	// Done reports whether a one-shot clip has played to its end. Always false for looping clips.
	//
	// Returns:
	//   - bool: true once local time reached the clip duration
	Done() bool
}

var _ ClipPlayable = &clipPlayable{}

// NewClipPlayable creates a leaf node sampling src from local time 0 at normal speed.
//
// Parameters:
//   - src: the clip handle to sample
//
// Returns:
//   - ClipPlayable: the new leaf
func NewClipPlayable(src clip.Source) ClipPlayable {
	return &clipPlayable{
		mu:     &sync.Mutex{},
		source: src,
		speed:  1,
	}
}

func (c *clipPlayable) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.destroyed && c.source != nil && c.source.Valid()
}

func (c *clipPlayable) Source() clip.Source {
	return c.source
}

func (c *clipPlayable) Time() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

func (c *clipPlayable) SetTime(t float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = t
}

func (c *clipPlayable) SetSpeed(speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
}

func (c *clipPlayable) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.source.Loop() {
		return false
	}
	return c.time >= c.source.Duration()
}

func (c *clipPlayable) Advance(deltaTime float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.source == nil {
		return
	}
	c.time += deltaTime * c.speed
	if !c.source.Loop() {
		if d := c.source.Duration(); c.time > d {
			c.time = d
		}
	}
}

func (c *clipPlayable) Evaluate(out clip.Pose) {
	c.mu.Lock()
	t := c.time
	destroyed := c.destroyed
	c.mu.Unlock()

	if destroyed || c.source == nil {
		out.SetIdentity()
		return
	}
	c.source.Sample(t, out)
}

func (c *clipPlayable) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}
