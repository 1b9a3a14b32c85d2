package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/game_object"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"github.com/Carmen-Shannon/oxy-blend/engine/scene"
	"github.com/Carmen-Shannon/oxy-blend/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingScene is a scene.Scene that records Update calls into a shared log.
type recordingScene struct {
	name   string
	active bool
	log    *[]string
	err    error
	count  int
}

func (s *recordingScene) Name() string { return s.name }
func (s *recordingScene) SetName(name string) { s.name = name }
func (s *recordingScene) Active() bool { return s.active }
func (s *recordingScene) SetActive(active bool) { s.active = active }
func (s *recordingScene) Count() int { return s.count }
func (s *recordingScene) Add(game_object.GameObject) (uint64, error) { return 0, nil }
func (s *recordingScene) Get(uint64) game_object.GameObject { return nil }
func (s *recordingScene) Find(string) game_object.GameObject { return nil }
func (s *recordingScene) Objects() []game_object.GameObject { return nil }
func (s *recordingScene) Remove(uint64) bool { return false }
func (s *recordingScene) Clear() {}
func (s *recordingScene) Release() {}
func (s *recordingScene) Workers() int { return 1 }
func (s *recordingScene) Update(deltaTime float32) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

var _ scene.Scene = &recordingScene{}

// loopWindow is a window.Window whose message loop only runs the update callback.
type loopWindow struct {
	running  atomic.Bool
	closes   int
	onUpdate func()
}

func (w *loopWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *loopWindow) SetKeyDownCallback(func(uint32)) {}
func (w *loopWindow) SetKeyUpCallback(func(uint32)) {}
func (w *loopWindow) SetTitle(string) {}
func (w *loopWindow) IsRunning() bool { return w.running.Load() }
func (w *loopWindow) Width() int { return 1 }
func (w *loopWindow) Height() int { return 1 }
func (w *loopWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *loopWindow) Close() error {
	w.closes++
	w.running.Store(false)
	return nil
}
func (w *loopWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(100 * time.Microsecond)
	}
}

var _ window.Window = &loopWindow{}

func TestStepOrdersCallbackThenScenesByKey(t *testing.T) {
	var calls []string
	e := NewEngine(
		WithTickCallback(func(float32) { calls = append(calls, "callback") }),
		WithScene(5, &recordingScene{name: "five", active: true, log: &calls}),
		WithScene(-1, &recordingScene{name: "minus", active: true, log: &calls}),
	)
	e.AddScene(2, &recordingScene{name: "two", active: true, log: &calls})
	e.AddScene(3, &recordingScene{name: "inactive", active: false, log: &calls})

	require.NoError(t, e.Step(1.0/60))
	assert.Equal(t, []string{"callback", "minus", "two", "five"}, calls)
	assert.Equal(t, uint64(1), e.Ticks())
}

func TestStepJoinsSceneErrors(t *testing.T) {
	var calls []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	e := NewEngine(
		WithScene(0, &recordingScene{name: "a", active: true, log: &calls, err: errA}),
		WithScene(1, &recordingScene{name: "b", active: true, log: &calls, err: errB}),
	)

	err := e.Step(0.1)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, calls, 2, "a failing scene must not stop later scenes")
}

func TestSceneRegistry(t *testing.T) {
	var calls []string
	s := &recordingScene{name: "s", log: &calls}
	e := NewEngine()
	e.AddScene(4, s)
	assert.Same(t, s, e.Scene(4))
	assert.Len(t, e.Scenes(), 1)

	cp := e.Scenes()
	delete(cp, 4)
	assert.NotNil(t, e.Scene(4), "Scenes() returned the live map")

	e.RemoveScene(4)
	assert.Nil(t, e.Scene(4))
}

func TestTickRate(t *testing.T) {
	e := NewEngine(WithTickRate(0))
	assert.Equal(t, time.Second/60, e.TickRate())

	e.SetTickRate(200)
	assert.Equal(t, 5*time.Millisecond, e.TickRate())

	e.SetTickRate(-3)
	assert.Equal(t, time.Second/60, e.TickRate(), "non-positive rate resets to 60")
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine()
	e.Quit()
	e.Quit()
	select {
	case <-e.Done():
	default:
		t.Fatal("Done() not closed after Quit")
	}
}

func runWithTimeout(t *testing.T, e Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("Run did not return")
	}
}

func TestRunHeadlessStopsOnQuit(t *testing.T) {
	var e Engine
	ticks := 0
	e = NewEngine(
		WithTickRate(1000),
		WithTickCallback(func(float32) {
			ticks++
			if ticks == 3 {
				e.Quit()
			}
		}),
	)

	runWithTimeout(t, e)
	assert.GreaterOrEqual(t, e.Ticks(), uint64(3))
}

func TestRunRecoversFromTickPanic(t *testing.T) {
	e := NewEngine(
		WithTickRate(1000),
		WithTickCallback(func(float32) { panic("boom") }),
	)
	runWithTimeout(t, e)
}

func TestRunDrivesFrameCallbackAndClosesWindow(t *testing.T) {
	win := &loopWindow{}
	win.running.Store(true)

	var e Engine
	var frames atomic.Int64
	e = NewEngine(
		WithWindow(win),
		WithTickRate(1000),
		WithFrameCallback(func() { frames.Add(1) }),
		WithTickCallback(func(float32) {
			if frames.Load() >= 3 {
				e.Quit()
			}
		}),
	)

	runWithTimeout(t, e)
	assert.GreaterOrEqual(t, frames.Load(), int64(3))
	assert.Equal(t, 1, win.closes, "the window closes once on quit")
	assert.False(t, win.IsRunning())
}

func TestProfilerGaugesCountObjects(t *testing.T) {
	skeleton, err := model.NewSkeleton([]model.Bone{{Name: "root", ParentIndex: -1, LocalTransform: model.IdentityTransform()}})
	require.NoError(t, err)
	mdl := model.NewModel(
		model.WithSkeleton(skeleton),
		model.WithAnimation(&model.AnimationClip{Name: "idle", Duration: 1, Loop: true}),
		model.WithAnimation(&model.AnimationClip{Name: "walk", Duration: 1, Loop: true}),
	)
	s := scene.NewScene("crowd", scene.WithUpdateWorkers(2))
	defer s.Release()
	for _, name := range []string{"a", "b", "c"} {
		obj, err := game_object.NewGameObject(game_object.WithName(name), game_object.WithModel(mdl))
		require.NoError(t, err)
		_, err = s.Add(obj)
		require.NoError(t, err)
	}

	e := NewEngine(WithScene(0, s), WithProfiling(true), WithProfilerInterval(time.Nanosecond))
	time.Sleep(time.Millisecond)
	require.NoError(t, e.Step(0.1))

	r := e.Profiler().LastReport()
	require.NotEmpty(t, r, "profiler did not report")
	assert.Contains(t, r, "| Objects: 3 | Overlays: 0")
}
