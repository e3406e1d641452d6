// Package input defines the sink (C5) that RFB sessions forward
// decoded pointer and key events to. Synthesizing the actual OS input
// event is out of scope for this module (spec §1 treats it as an
// opaque sink); real backends plug in behind the Sink interface — the
// obvious candidate in this corpus is github.com/go-vgo/robotgo, used
// by the Licenta/avacadovnc teachers for exactly this purpose, but
// pulling its cgo/X11/Win32 dependency into a library whose spec keeps
// input synthesis opaque would be the tail wagging the dog.
package input

// Sink receives decoded RFB input events. Coordinates passed to
// PostPointer are in framebuffer pixel space.
type Sink interface {
	PostPointer(x, y int, buttonMask uint8)
	PostKey(keysym uint32, down bool)
}

// NopSink discards every event. Useful as a default when a host
// embedding has not wired a real input backend yet.
type NopSink struct{}

func (NopSink) PostPointer(x, y int, buttonMask uint8) {}
func (NopSink) PostKey(keysym uint32, down bool)       {}

// NormalizingSink wraps an inner Sink and rescales pointer coordinates
// from framebuffer pixel space into a 0..65535 normalized space, the
// convention expected by absolute-positioning input-injection APIs
// (per §4.5: x_os = x * 65535 / width). Key events pass through
// unchanged since keysyms carry no coordinate space.
type NormalizingSink struct {
	Inner  Sink
	Width  int
	Height int
}

// NewNormalizingSink returns a NormalizingSink over inner with the
// given framebuffer dimensions.
func NewNormalizingSink(inner Sink, width, height int) *NormalizingSink {
	return &NormalizingSink{Inner: inner, Width: width, Height: height}
}

func (s *NormalizingSink) PostPointer(x, y int, buttonMask uint8) {
	nx, ny := x, y
	if s.Width > 0 {
		nx = x * 65535 / s.Width
	}
	if s.Height > 0 {
		ny = y * 65535 / s.Height
	}
	s.Inner.PostPointer(nx, ny, buttonMask)
}

func (s *NormalizingSink) PostKey(keysym uint32, down bool) {
	s.Inner.PostKey(keysym, down)
}

// Pointer button mask bits per the RFB protocol.
const (
	ButtonLeft     = 1 << 0
	ButtonMiddle   = 1 << 1
	ButtonRight    = 1 << 2
	ButtonWheelUp  = 1 << 3
	ButtonWheelDown = 1 << 4
)
