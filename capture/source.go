// Package capture defines the screen-capture contract (C1) that feeds
// the framebuffer store, plus a synthetic source usable without any
// real desktop-duplication backend.
package capture

import (
	"errors"
	"time"

	"github.com/driftwood-labs/rfbserver/framebuffer"
)

// ErrTimeout indicates the OS duplication facility reported no new
// frame within the requested deadline. Not a failure: the screen has
// not changed.
var ErrTimeout = errors.New("capture: timed out waiting for a frame")

// ErrModeChanged indicates the display resolution changed mid-capture.
// Fatal to the current capture worker; the caller must shut it down
// and re-initialize on the next start.
var ErrModeChanged = errors.New("capture: display mode changed")

// ErrNotSupported indicates this build has no working capture backend
// for the current platform.
var ErrNotSupported = errors.New("capture: not supported on this platform")

// FrameDelta is the outcome of one Acquire call: either a set of
// dirty rects (possibly empty, meaning "no metadata, substitute a
// full-surface rect upstream") or, when Full is true, an explicit
// full-surface refresh.
type FrameDelta struct {
	Rects []framebuffer.Rect
	Full  bool
}

// Source is the capability a platform-specific desktop-duplication
// backend implements. Acquire must always leave the source's internal
// staging buffer holding an up-to-date RGBA copy of the display,
// retrievable via Pixels; the returned FrameDelta only describes what
// changed since the previous successful Acquire.
type Source interface {
	// Init starts the capture backend and reports the true display
	// dimensions.
	Init() (width, height int, err error)

	// Acquire blocks up to timeout for the next frame. Returns
	// ErrTimeout if none arrived, ErrModeChanged if the display mode
	// changed, or any other error for a recoverable backend failure.
	Acquire(timeout time.Duration) (FrameDelta, error)

	// Pixels returns the current RGBA staging buffer. Valid only
	// after a successful Acquire; the backend owns this slice and may
	// overwrite it on the next Acquire, so callers must copy out what
	// they need before calling Acquire again.
	Pixels() []byte

	// Shutdown releases backend resources. Idempotent.
	Shutdown()
}
