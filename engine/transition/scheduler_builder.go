package transition

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// WithLabel sets the log prefix used by the Scheduler.
//
// Parameters:
//   - label: the prefix, printed as "[label]"
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithLabel(label string) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.label = label
	}
}

// RampOption is a functional option for configuring a Ramp in StartRamp.
type RampOption func(*Ramp)

// WithDelay holds the ramp in the pending state until delay seconds of tick time have elapsed.
// Negative delays are treated as 0.
//
// Parameters:
//   - delay: the delay in seconds
//
// Returns:
//   - RampOption: option function to apply
func WithDelay(delay float32) RampOption {
	return func(r *Ramp) {
		r.delay = delay
	}
}

// WithOnComplete sets the callback fired exactly once after the final onProgress(1).
//
// Parameters:
//   - fn: the completion callback (nil is a no-op)
//
// Returns:
//   - RampOption: option function to apply
func WithOnComplete(fn func()) RampOption {
	return func(r *Ramp) {
		r.onComplete = fn
	}
}
