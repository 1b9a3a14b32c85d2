// Package transition drives time-based weight ramps from an externally supplied frame delta.
package transition

import (
	"log"
	"sync/atomic"
)

// MinDuration is the floor applied to ramp durations <= 0.
const MinDuration float32 = 1e-4

// completionTolerance is the relative float32 accumulation error absorbed so a delay
// ends, and a ramp finishes, on the tick where the accumulated time reaches the target.
const completionTolerance float32 = 1e-5

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	ramps     []*Ramp
	nextID    uint64
	advancing bool
	active    atomic.Int32
	label     string
}

// Scheduler owns zero or more in-flight ramps and advances them once per frame.
//
// The Scheduler is cooperative and single-threaded: StartRamp, Advance and Cancel must be
// called from the goroutine that drives the frame. Nothing blocks; a ramp's delay is
// accumulated tick time. Callbacks run synchronously inside Advance and may start or
// cancel ramps. Ramps started from a callback begin advancing on the next Advance call.
// Active is the only method safe to call from other goroutines.
type Scheduler interface {
	// StartRamp registers a ramp from 'from' to 'to' over duration seconds.
	// Durations <= 0 are floored to MinDuration rather than rejected.
	// Each Advance while running adds deltaTime/duration to the progress and calls
	// onProgress with the clamped progress. When progress reaches 1, onProgress(1) is
	// called, then the completion callback (if any) fires exactly once and the ramp is removed.
	//
	// Parameters:
	//   - from: the value at progress 0
	//   - to: the value at progress 1
	//   - duration: the ramp length in seconds
	//   - onProgress: the per-tick progress callback (may be nil)
	//   - options: variadic RampOption functions (WithDelay, WithOnComplete)
	//
	// Returns:
	//   - *Ramp: the handle used to query or cancel the ramp
	StartRamp(from, to, duration float32, onProgress ProgressFunc, options ...RampOption) *Ramp

	// Advance moves every registered ramp forward by deltaTime seconds.
	// Negative or NaN deltas are treated as 0.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	Advance(deltaTime float32)

	// Cancel removes a pending or running ramp without firing its completion callback.
	//
	// Parameters:
	//   - r: the ramp handle
	//
	// Returns:
	//   - bool: true if the ramp was in flight and is now cancelled
	Cancel(r *Ramp) bool

	// CancelAll cancels every in-flight ramp without firing completion callbacks.
	//
	// Returns:
	//   - int: the number of ramps cancelled
	CancelAll() int

	// Active returns the number of pending or running ramps.
	//
	// Returns:
	//   - int: the in-flight ramp count
	Active() int
}

var _ Scheduler = &scheduler{}

// NewScheduler creates an empty Scheduler.
//
// Parameters:
//   - options: variadic list of SchedulerBuilderOption functions
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &scheduler{
		label: "Transition",
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scheduler) StartRamp(from, to, duration float32, onProgress ProgressFunc, options ...RampOption) *Ramp {
	s.nextID++
	r := &Ramp{
		id:         s.nextID,
		owner:      s,
		from:       from,
		to:         to,
		duration:   duration,
		onProgress: onProgress,
	}
	for _, opt := range options {
		opt(r)
	}

	if !(r.duration > 0) {
		log.Printf("[%s] ramp %d: duration %v clamped to %v", s.label, r.id, r.duration, MinDuration)
		r.duration = MinDuration
	}
	if !(r.delay > 0) {
		r.delay = 0
	}
	if r.delay > 0 {
		r.state = StatePending
	} else {
		r.state = StateRunning
	}

	s.ramps = append(s.ramps, r)
	s.active.Add(1)
	return r
}

func (s *scheduler) Advance(deltaTime float32) {
	if !(deltaTime > 0) {
		deltaTime = 0
	}

	s.advancing = true
	// Ramps appended by callbacks during this pass wait for the next Advance.
	n := len(s.ramps)
	for i := 0; i < n; i++ {
		s.step(s.ramps[i], deltaTime)
	}
	s.advancing = false
	s.compact()
}

// step advances one ramp by deltaTime and fires its callbacks.
func (s *scheduler) step(r *Ramp, deltaTime float32) {
	switch r.state {
	case StatePending:
		r.delayElapsed += deltaTime
		if r.delayElapsed < r.delay*(1-completionTolerance) {
			return
		}
		// The delay is an offset: the crossing tick reports progress 0 and the
		// remainder of the tick is not credited to the ramp.
		r.state = StateRunning
		r.notify(0)

	case StateRunning:
		r.t += deltaTime / r.duration
		if r.t >= 1-completionTolerance {
			r.t = 1
		}
		r.notify(r.t)
		if r.state != StateRunning || r.t < 1 {
			return
		}
		r.state = StateCompleted
		s.active.Add(-1)
		if r.onComplete != nil {
			r.onComplete()
		}
	}
}

func (s *scheduler) Cancel(r *Ramp) bool {
	if r == nil || r.owner != s {
		return false
	}
	if r.state != StatePending && r.state != StateRunning {
		return false
	}
	r.state = StateCancelled
	s.active.Add(-1)
	if !s.advancing {
		s.compact()
	}
	return true
}

func (s *scheduler) CancelAll() int {
	count := 0
	for _, r := range s.ramps {
		if r.state == StatePending || r.state == StateRunning {
			r.state = StateCancelled
			s.active.Add(-1)
			count++
		}
	}
	if !s.advancing {
		s.compact()
	}
	return count
}

func (s *scheduler) Active() int {
	return int(s.active.Load())
}

// compact drops terminal ramps from the registry.
func (s *scheduler) compact() {
	kept := s.ramps[:0]
	for _, r := range s.ramps {
		if !r.Done() {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(s.ramps); i++ {
		s.ramps[i] = nil
	}
	s.ramps = kept
}
