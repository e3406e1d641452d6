package rfb

import "fmt"

// FramebufferUpdateRequestLength is the body length (excluding the
// leading message-type byte) of a FramebufferUpdateRequest message.
const FramebufferUpdateRequestLength = 9

// KeyEventLength is the body length (excluding the message-type byte)
// of a KeyEvent message.
const KeyEventLength = 7

// PointerEventLength is the body length (excluding the message-type
// byte) of a PointerEvent message.
const PointerEventLength = 5

// FramebufferUpdateRequestMsg is a decoded client request for an update.
type FramebufferUpdateRequestMsg struct {
	Incremental bool
	X, Y, W, H  uint16
}

// DecodeFramebufferUpdateRequest parses the 9-byte body that follows
// the FramebufferUpdateRequest message-type byte.
func DecodeFramebufferUpdateRequest(body []byte) (FramebufferUpdateRequestMsg, error) {
	if len(body) != FramebufferUpdateRequestLength {
		return FramebufferUpdateRequestMsg{}, fmt.Errorf("FramebufferUpdateRequest body must be %d bytes, got %d", FramebufferUpdateRequestLength, len(body))
	}
	return FramebufferUpdateRequestMsg{
		Incremental: body[0] != 0,
		X:           uint16(body[1])<<8 | uint16(body[2]),
		Y:           uint16(body[3])<<8 | uint16(body[4]),
		W:           uint16(body[5])<<8 | uint16(body[6]),
		H:           uint16(body[7])<<8 | uint16(body[8]),
	}, nil
}

// KeyEventMsg is a decoded client keyboard event.
type KeyEventMsg struct {
	Down   bool
	Keysym uint32
}

// DecodeKeyEvent parses the 7-byte body that follows the KeyEvent
// message-type byte: down-flag, 2 bytes padding, 4-byte big-endian keysym.
func DecodeKeyEvent(body []byte) (KeyEventMsg, error) {
	if len(body) != KeyEventLength {
		return KeyEventMsg{}, fmt.Errorf("KeyEvent body must be %d bytes, got %d", KeyEventLength, len(body))
	}
	return KeyEventMsg{
		Down:   body[0] != 0,
		Keysym: uint32(body[3])<<24 | uint32(body[4])<<16 | uint32(body[5])<<8 | uint32(body[6]),
	}, nil
}

// PointerEventMsg is a decoded client pointer event.
type PointerEventMsg struct {
	ButtonMask uint8
	X, Y       uint16
}

// DecodePointerEvent parses the 5-byte body that follows the
// PointerEvent message-type byte: button-mask, 2-byte x, 2-byte y.
func DecodePointerEvent(body []byte) (PointerEventMsg, error) {
	if len(body) != PointerEventLength {
		return PointerEventMsg{}, fmt.Errorf("PointerEvent body must be %d bytes, got %d", PointerEventLength, len(body))
	}
	return PointerEventMsg{
		ButtonMask: body[0],
		X:          uint16(body[1])<<8 | uint16(body[2]),
		Y:          uint16(body[3])<<8 | uint16(body[4]),
	}, nil
}

// DecodeSetEncodings parses the body following the SetEncodings
// message-type byte: 1 byte padding, 2-byte count, then count*4 bytes
// of big-endian int32 encoding identifiers.
func DecodeSetEncodings(body []byte) ([]int32, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("SetEncodings body too short: %d bytes", len(body))
	}
	count := int(body[1])<<8 | int(body[2])
	want := 3 + count*4
	if len(body) != want {
		return nil, fmt.Errorf("SetEncodings body must be %d bytes for %d encodings, got %d", want, count, len(body))
	}
	encodings := make([]int32, count)
	for i := 0; i < count; i++ {
		off := 3 + i*4
		encodings[i] = int32(body[off])<<24 | int32(body[off+1])<<16 | int32(body[off+2])<<8 | int32(body[off+3])
	}
	return encodings, nil
}

// ClientCutTextLength returns the total body length (including the
// 4-byte length-prefix and 3 bytes of padding) of a ClientCutText
// message, given the first 7 bytes following the message-type byte.
func ClientCutTextLength(partial []byte) (int, error) {
	if len(partial) < 7 {
		return 0, fmt.Errorf("ClientCutText header too short: %d bytes", len(partial))
	}
	textLen := int(partial[3])<<24 | int(partial[4])<<16 | int(partial[5])<<8 | int(partial[6])
	return 7 + textLen, nil
}

// EncodeFramebufferUpdateHeader builds the 4-byte header
// (message-type, padding, number-of-rectangles) that precedes a
// FramebufferUpdate message's rectangles.
func EncodeFramebufferUpdateHeader(numRects uint16) []byte {
	return []byte{
		FramebufferUpdate,
		0,
		uint8(numRects >> 8),
		uint8(numRects),
	}
}

// EncodeRectHeader builds the 12-byte rectangle header (x, y, w, h,
// encoding-type) that precedes a rectangle's raw pixel payload.
func EncodeRectHeader(x, y, w, h uint16, encoding int32) []byte {
	return []byte{
		uint8(x >> 8), uint8(x),
		uint8(y >> 8), uint8(y),
		uint8(w >> 8), uint8(w),
		uint8(h >> 8), uint8(h),
		uint8(encoding >> 24), uint8(encoding >> 16), uint8(encoding >> 8), uint8(encoding),
	}
}
