package rfb

// ExtractRectWire reads a width x height region at (x, y) out of an
// RGBA pixel buffer (4 bytes per pixel, row-major, byte order
// R, G, B, A — the framebuffer store's canonical in-memory layout)
// and returns it re-packed in the wire's fixed BGRX little-endian
// byte order per the default PixelFormat (§3): B, G, R, 0. The
// returned slice is exactly w*h*4 bytes.
func ExtractRectWire(rgba []byte, stride, x, y, w, h int) []byte {
	out := make([]byte, w*h*4)
	for row := 0; row < h; row++ {
		srcRowStart := ((y+row)*stride + x) * 4
		dstRowStart := row * w * 4
		for col := 0; col < w; col++ {
			srcOff := srcRowStart + col*4
			dstOff := dstRowStart + col*4
			r, g, b := rgba[srcOff], rgba[srcOff+1], rgba[srcOff+2]
			out[dstOff] = b
			out[dstOff+1] = g
			out[dstOff+2] = r
			out[dstOff+3] = 0
		}
	}
	return out
}