package window

// WindowBuilderOption is a functional option for configuring a Window during construction.
type WindowBuilderOption func(*engineWindow)

// WithTitle sets the initial window title.
//
// Parameters:
//   - title: the title shown in the title bar
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width in pixels.
//
// Parameters:
//   - width: the width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height in pixels.
//
// Parameters:
//   - height: the height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}
