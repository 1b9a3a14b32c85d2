package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/stretchr/testify/assert"
)

type fakeCharacter struct {
	weight    float32
	overlays  []string
	triggered []string
	accept    bool
}

func (f *fakeCharacter) Name() string { return "fake" }
func (f *fakeCharacter) Weight() float32 { return f.weight }
func (f *fakeCharacter) SetWeight(w float32) { f.weight = w }
func (f *fakeCharacter) OverlayNames() []string { return f.overlays }
func (f *fakeCharacter) TriggerOverlay(name string) bool {
	f.triggered = append(f.triggered, name)
	return f.accept
}

func TestHeldKeyRaisesWeightAtRate(t *testing.T) {
	ch := &fakeCharacter{}
	c := NewControls(WithRate(1), WithTargets(ch))

	c.KeyDown(common.KeyUp)
	c.Update(0.25)
	c.Update(0.25)
	assert.InDelta(t, float32(0.5), ch.weight, common.WeightEpsilon)

	c.KeyUp(common.KeyUp)
	c.Update(0.25)
	assert.InDelta(t, float32(0.5), ch.weight, common.WeightEpsilon, "the weight moved after release")
}

func TestLowerKeyClampsAtZero(t *testing.T) {
	ch := &fakeCharacter{weight: 0.1}
	c := NewControls(WithRate(1), WithTargets(ch))
	c.KeyDown(common.KeyS)
	c.Update(1)
	assert.Zero(t, ch.weight)
}

func TestOpposingKeysCancel(t *testing.T) {
	ch := &fakeCharacter{weight: 0.4}
	c := NewControls(WithTargets(ch))
	c.KeyDown(common.KeyW)
	c.KeyDown(common.KeyDown)
	c.Update(1)
	assert.Equal(t, float32(0.4), ch.weight)
}

func TestRaiseClampsOutOfRangeWeight(t *testing.T) {
	ch := &fakeCharacter{weight: 3}
	c := NewControls(WithTargets(ch))
	c.KeyDown(common.KeyRight)
	c.Update(0.1)
	assert.Equal(t, float32(1), ch.weight)
}

func TestSpaceTriggersFirstOverlay(t *testing.T) {
	ch := &fakeCharacter{overlays: []string{"jump", "wave"}, accept: true}
	c := NewControls(WithTargets(ch))

	c.KeyDown(common.KeySpace)
	c.KeyDown(common.KeySpace) // repeat while held
	assert.Equal(t, []string{"jump"}, ch.triggered)

	c.KeyUp(common.KeySpace)
	c.KeyDown(common.KeySpace)
	assert.Equal(t, []string{"jump", "jump"}, ch.triggered, "a second press after release triggers again")
	assert.Equal(t, 2, c.Triggered())
}

func TestDigitKeysSelectOverlay(t *testing.T) {
	ch := &fakeCharacter{overlays: []string{"jump", "wave"}, accept: false}
	other := &fakeCharacter{overlays: []string{"jump"}, accept: true}
	c := NewControls(WithTargets(ch, other))

	c.KeyDown(common.Key2)
	assert.Equal(t, []string{"wave"}, ch.triggered)
	assert.Empty(t, other.triggered, "a target without a second overlay is skipped")
	assert.Zero(t, c.Triggered(), "rejected triggers are not counted")

	c.KeyDown(common.Key9)
	assert.Len(t, ch.triggered, 1, "an out of range digit triggers nothing")
}

func TestResetKeys(t *testing.T) {
	ch := &fakeCharacter{weight: 0.9}
	c := NewControls(WithRestWeight(0.25), WithTargets(ch))
	c.KeyDown(common.KeyR)
	assert.Equal(t, float32(0.25), ch.weight)

	ch.weight = 0.7
	c.KeyDown(common.Key0)
	assert.Equal(t, float32(0.25), ch.weight)
}

func TestAddTargetAndDefaults(t *testing.T) {
	c := NewControls(WithRate(-1))
	assert.Equal(t, float32(0.5), c.Rate())

	c.AddTarget(nil)
	c.AddTarget(&fakeCharacter{})
	assert.Len(t, c.Targets(), 1)
}
