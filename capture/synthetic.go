package capture

import (
	"math"
	"time"

	"github.com/driftwood-labs/rfbserver/framebuffer"
)

// Pattern selects a synthetic animation for Synthetic to generate.
type Pattern string

const (
	PatternWheel    Pattern = "wheel"
	PatternPlasma   Pattern = "plasma"
	PatternGradient Pattern = "gradient"
)

// Synthetic is a deterministic, backend-free Source used where no real
// desktop-duplication facility is wired in (development, tests, and any
// platform without a ported backend). Every Acquire call whose timeout
// covers one frame interval advances one animation frame and reports
// the whole surface dirty; a shorter timeout sleeps for the timeout
// and returns ErrTimeout without advancing. This matches the
// teacher's animation generators in spirit — here driving an actual
// capture-contract implementation instead of a one-off mock server.
type Synthetic struct {
	Width, Height int
	FPS           int
	Pattern       Pattern

	frame  int
	pixels []byte
}

// NewSynthetic returns a Synthetic source producing width x height
// RGBA frames at the given pattern and frame rate.
func NewSynthetic(width, height, fps int, pattern Pattern) *Synthetic {
	return &Synthetic{Width: width, Height: height, FPS: fps, Pattern: pattern}
}

func (s *Synthetic) Init() (int, int, error) {
	s.pixels = make([]byte, s.Width*s.Height*4)
	return s.Width, s.Height, nil
}

func (s *Synthetic) Acquire(timeout time.Duration) (FrameDelta, error) {
	interval := time.Second / time.Duration(maxInt(s.FPS, 1))
	if interval > timeout {
		time.Sleep(timeout)
		return FrameDelta{}, ErrTimeout
	}
	time.Sleep(interval)

	switch s.Pattern {
	case PatternPlasma:
		generatePlasma(s.pixels, s.frame, s.Width, s.Height)
	case PatternGradient:
		generateGradientSweep(s.pixels, s.frame, s.Width, s.Height)
	default:
		generateColorWheel(s.pixels, s.frame, s.Width, s.Height)
	}
	s.frame++

	return FrameDelta{
		Rects: []framebuffer.Rect{{X: 0, Y: 0, W: uint16(s.Width), H: uint16(s.Height)}},
	}, nil
}

func (s *Synthetic) Pixels() []byte { return s.pixels }

func (s *Synthetic) Shutdown() {}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// generateColorWheel fills pixels (RGBA, row-major) with a rotating
// hue wheel. Adapted from the mock VNC server's identically named
// animation generator.
func generateColorWheel(pixels []byte, frame, width, height int) {
	centerX := float64(width) / 2
	centerY := float64(height) / 2
	maxRadius := math.Min(centerX, centerY) * 0.8
	rotation := float64(frame) * 2 * math.Pi / 120

	for i := 0; i < len(pixels); i += 4 {
		pixel := i / 4
		row := pixel / width
		col := pixel % width

		dx := float64(col) - centerX
		dy := float64(row) - centerY
		distance := math.Sqrt(dx*dx + dy*dy)
		angle := math.Atan2(dy, dx) + rotation

		if distance <= maxRadius {
			hue := angle * 180 / math.Pi
			if hue < 0 {
				hue += 360
			}
			r, g, b := hsvToRGB(hue, distance/maxRadius, 1.0)
			pixels[i] = uint8(r * 255)
			pixels[i+1] = uint8(g * 255)
			pixels[i+2] = uint8(b * 255)
			pixels[i+3] = 255
		} else {
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 0, 0, 0, 255
		}
	}
}

// generatePlasma fills pixels with a classic four-wave plasma effect.
func generatePlasma(pixels []byte, frame, width, height int) {
	t := float64(frame) * 0.05
	for i := 0; i < len(pixels); i += 4 {
		pixel := i / 4
		row := pixel / width
		col := pixel % width

		x := float64(col) / float64(width)
		y := float64(row) / float64(height)

		v1 := math.Sin(x*10 + t)
		v2 := math.Sin(y*10 + t*1.2)
		v3 := math.Sin((x+y)*10 + t*0.8)
		v4 := math.Sin(math.Sqrt(x*x+y*y)*10 + t*1.5)
		plasma := (v1 + v2 + v3 + v4) / 4

		hue := (plasma + 1) * 180
		r, g, b := hsvToRGB(hue, 0.8, 0.9)
		pixels[i] = uint8(r * 255)
		pixels[i+1] = uint8(g * 255)
		pixels[i+2] = uint8(b * 255)
		pixels[i+3] = 255
	}
}

// generateGradientSweep fills pixels with a rotating angular gradient.
func generateGradientSweep(pixels []byte, frame, width, height int) {
	rotation := float64(frame) * 2 * math.Pi / 90
	centerX := float64(width) / 2
	centerY := float64(height) / 2

	for i := 0; i < len(pixels); i += 4 {
		pixel := i / 4
		row := pixel / width
		col := pixel % width

		dx := float64(col) - centerX
		dy := float64(row) - centerY
		angle := math.Atan2(dy, dx) + rotation
		normalized := (angle + math.Pi) / (2 * math.Pi)
		normalized -= math.Floor(normalized)

		hue := normalized * 360
		r, g, b := hsvToRGB(hue, 0.9, 0.8)
		pixels[i] = uint8(r * 255)
		pixels[i+1] = uint8(g * 255)
		pixels[i+2] = uint8(b * 255)
		pixels[i+3] = 255
	}
}

// hsvToRGB converts an HSV color to RGB, each component in [0,1].
func hsvToRGB(h, s, v float64) (r, g, b float64) {
	h = math.Mod(h, 360) / 60
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	m := v - c

	switch int(h) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
