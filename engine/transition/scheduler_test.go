package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	ts     []float32
	values []float32
}

func (p *progressLog) record(t, value float32) {
	p.ts = append(p.ts, t)
	p.values = append(p.values, value)
}

func TestRampReportsAdditiveProgressAndCompletesOnce(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	completions := 0
	callsAtCompletion := -1

	r := s.StartRamp(0, 1, 2.0, log.record, WithOnComplete(func() {
		completions++
		callsAtCompletion = len(log.ts)
	}))

	for i := 0; i < 4; i++ {
		s.Advance(0.5)
	}

	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1.0}, log.ts)
	assert.Equal(t, 1, completions)
	assert.Equal(t, 4, callsAtCompletion, "completion fires after the final progress call")
	assert.Equal(t, StateCompleted, r.State())
	assert.Zero(t, s.Active())

	s.Advance(0.5)
	assert.Equal(t, 1, completions, "a completed ramp must not run again")
	assert.Len(t, log.ts, 4)
}

func TestRampInterpolatesValue(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	s.StartRamp(1, 0, 1, log.record)
	s.Advance(0.25)
	require.Len(t, log.values, 1)
	assert.Equal(t, float32(0.75), log.values[0])
}

func TestDelayedRampStartsFromZeroOnCrossingTick(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	r := s.StartRamp(0, 1, 1.0, log.record, WithDelay(1.0))

	for i := 0; i < 3; i++ {
		s.Advance(0.25)
	}
	assert.Empty(t, log.ts, "no progress during the delay")
	assert.Equal(t, StatePending, r.State())

	s.Advance(0.25)
	assert.Equal(t, []float32{0}, log.ts, "first progress is 0 on the crossing tick")
	assert.Equal(t, StateRunning, r.State())

	s.Advance(0.5)
	require.Len(t, log.ts, 2)
	assert.Equal(t, float32(0.5), log.ts[1])
}

func TestDelayEndsOnTickThatReachesItAtFrameRate(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	r := s.StartRamp(0, 1, 1, log.record, WithDelay(1))

	for tick := 1; tick <= 60; tick++ {
		s.Advance(1.0 / 60)
		if tick < 60 {
			require.Empty(t, log.ts, "ramp started early on tick %d", tick)
		}
	}
	assert.Equal(t, []float32{0}, log.ts, "the sixtieth tick of 1/60 ends a one second delay")
	assert.Equal(t, StateRunning, r.State())
}

func TestRampCompletesOnTickThatReachesItAtFrameRate(t *testing.T) {
	s := NewScheduler()
	r := s.StartRamp(0, 1, 1, nil)
	for tick := 0; tick < 60; tick++ {
		s.Advance(1.0 / 60)
	}
	assert.Equal(t, StateCompleted, r.State())
	assert.Equal(t, float32(1), r.Progress())
}

func TestCancelNeverFiresCompletion(t *testing.T) {
	s := NewScheduler()
	fired := false
	r := s.StartRamp(0, 1, 1, nil, WithOnComplete(func() { fired = true }))
	s.Advance(0.5)

	assert.True(t, s.Cancel(r))
	assert.False(t, s.Cancel(r), "a second Cancel reports false")
	s.Advance(1)
	assert.False(t, fired, "a cancelled ramp fired its completion callback")
	assert.Equal(t, StateCancelled, r.State())
	assert.Zero(t, s.Active())
}

func TestCancelFromAnotherScheduler(t *testing.T) {
	a := NewScheduler()
	b := NewScheduler()
	r := a.StartRamp(0, 1, 1, nil)
	assert.False(t, b.Cancel(r), "a foreign scheduler must not cancel the ramp")
	assert.False(t, b.Cancel(nil))
}

func TestNilCompletionIsTolerated(t *testing.T) {
	s := NewScheduler()
	r := s.StartRamp(0, 1, 0.5, nil)
	s.Advance(1)
	assert.Equal(t, StateCompleted, r.State())
}

func TestDegenerateDurationIsClamped(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	r := s.StartRamp(0, 1, 0, log.record)
	assert.Equal(t, MinDuration, r.Duration())

	s.Advance(1.0 / 60)
	assert.Equal(t, []float32{1}, log.ts)
	assert.Equal(t, StateCompleted, r.State())
}

func TestNegativeDeltaDoesNotRegress(t *testing.T) {
	s := NewScheduler()
	var log progressLog
	s.StartRamp(0, 1, 1, log.record)
	s.Advance(0.5)
	s.Advance(-0.25)
	assert.IsNonDecreasing(t, log.ts)
}

func TestRampStartedInCallbackWaitsForNextTick(t *testing.T) {
	s := NewScheduler()
	var second *Ramp
	var secondLog progressLog
	s.StartRamp(0, 1, 0.5, nil, WithOnComplete(func() {
		second = s.StartRamp(1, 0, 0.5, secondLog.record)
	}))

	s.Advance(0.5)
	require.NotNil(t, second, "chained ramp was not registered")
	assert.Empty(t, secondLog.ts, "chained ramp advanced in the tick that registered it")

	s.Advance(0.25)
	assert.Equal(t, []float32{0.5}, secondLog.ts)
}

func TestCancelAllFromCallback(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.StartRamp(0, 1, 1, func(t, v float32) {
		s.CancelAll()
	}, WithOnComplete(func() { fired++ }))
	s.StartRamp(0, 1, 1, nil, WithOnComplete(func() { fired++ }))

	s.Advance(2)
	assert.Zero(t, fired, "no completions after CancelAll")
	assert.Zero(t, s.Active())
}
