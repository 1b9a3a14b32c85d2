package blend

import (
	"errors"
)

var (
	// ErrInvalidTopology is returned at construction for a state count the topology cannot
	// hold, and by PlayOverlay on a topology without an overlay slot.
	ErrInvalidTopology = errors.New("blend: invalid topology")

	// ErrInvalidHandle is returned for an invalid clip handle or a mixer that does not
	// belong to the controller's graph.
	ErrInvalidHandle = errors.New("blend: invalid handle")

	// ErrUseAfterDestroy is returned by every operation except Destroy once the graph is destroyed.
	ErrUseAfterDestroy = errors.New("blend: use after destroy")

	// ErrOverlayInProgress is returned by PlayOverlay while another overlay is still blending.
	ErrOverlayInProgress = errors.New("blend: overlay already in progress")
)
