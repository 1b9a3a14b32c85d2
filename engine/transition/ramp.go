package transition

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
)

// State identifies where a Ramp is in its lifecycle.
//
// Pending (delay > 0) -> Running -> Completed, or Cancelled from Pending/Running.
// Completed and Cancelled are terminal.
type State int

const (
	// StatePending is a delayed ramp that has not begun reporting progress.
	StatePending State = iota

	// StateRunning is a ramp reporting progress every tick.
	StateRunning

	// StateCompleted is a ramp that reported progress 1 and fired its completion callback.
	StateCompleted

	// StateCancelled is a ramp removed by Cancel without firing its completion callback.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ProgressFunc receives the normalized progress t in [0, 1] and the interpolated value
// from + (to - from) * t.
type ProgressFunc func(t, value float32)

// Ramp is the handle to one timed interpolation registered with a Scheduler.
// It is owned by the scheduler that created it and, like the scheduler, is not safe for
// concurrent use.
type Ramp struct {
	id    uint64
	owner *scheduler
	state State

	from, to     float32
	duration     float32
	delay        float32
	delayElapsed float32
	t            float32

	onProgress ProgressFunc
	onComplete func()
}

// ID returns the scheduler-unique identifier of the ramp.
func (r *Ramp) ID() uint64 {
	return r.id
}

// State returns the ramp's lifecycle state.
func (r *Ramp) State() State {
	return r.state
}

// Progress returns the normalized progress in [0, 1].
func (r *Ramp) Progress() float32 {
	return r.t
}

// Value returns the interpolated value at the current progress.
func (r *Ramp) Value() float32 {
	return common.Lerp(r.from, r.to, r.t)
}

// Duration returns the effective ramp duration in seconds, after clamping.
func (r *Ramp) Duration() float32 {
	return r.duration
}

// Delay returns the effective delay in seconds, after clamping.
func (r *Ramp) Delay() float32 {
	return r.delay
}

// Done reports whether the ramp reached a terminal state.
func (r *Ramp) Done() bool {
	return r.state == StateCompleted || r.state == StateCancelled
}

func (r *Ramp) notify(t float32) {
	if r.onProgress != nil {
		r.onProgress(t, common.Lerp(r.from, r.to, t))
	}
}
