package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often the profiler reports. Values <= 0 are ignored.
//
// Parameters:
//   - interval: the report interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithGauge adds a named gauge sampled on every report.
//
// Parameters:
//   - name: the label printed in the report
//   - sample: returns the current value
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithGauge(name string, sample func() int) ProfilerBuilderOption {
	return func(p *Profiler) {
		if sample != nil {
			p.gauges = append(p.gauges, Gauge{Name: name, Sample: sample})
		}
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
