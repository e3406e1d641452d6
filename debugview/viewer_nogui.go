//go:build !gui

package debugview

import "github.com/driftwood-labs/rfbserver/framebuffer"

// Viewer is a no-op stand-in for builds without the "gui" tag, so
// callers don't need their own build-tag branches just to construct
// one.
type Viewer struct{}

// New returns a no-op Viewer. store and maxWidth are accepted and
// ignored to keep the call site identical across build tags.
func New(title string, store *framebuffer.Store, maxWidth int) *Viewer {
	return &Viewer{}
}

// Run does nothing in a non-gui build.
func (v *Viewer) Run() {}
