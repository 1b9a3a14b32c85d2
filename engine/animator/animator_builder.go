package animator

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithLabel sets the label used in the Animator's log lines.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the label option to an animator
func WithLabel(label string) AnimatorBuilderOption {
	return func(a *animator) {
		a.label = label
	}
}

// WithSink registers a palette consumer at construction.
//
// Parameters:
//   - sink: the palette consumer
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the sink option to an animator
func WithSink(sink PoseSink) AnimatorBuilderOption {
	return func(a *animator) {
		if sink != nil {
			a.sinks = append(a.sinks, sink)
		}
	}
}
