package rfb

import (
	"fmt"
	"io"
)

// SendRFBVersion sends the RFB protocol version
func SendRFBVersion(w io.Writer) error {
	_, err := w.Write([]byte(RFBVersion))
	return err
}

// ReadRFBVersion reads and returns the RFB protocol version
func ReadRFBVersion(r io.Reader) (string, error) {
	version := make([]byte, len(RFBVersion))
	if _, err := io.ReadFull(r, version); err != nil {
		return "", err
	}
	return string(version), nil
}

// SendSecurityTypes sends the list of supported security types
func SendSecurityTypes(w io.Writer, types []uint8) error {
	msg := make([]byte, 1+len(types))
	msg[0] = uint8(len(types))
	copy(msg[1:], types)
	_, err := w.Write(msg)
	return err
}

// ReadSecurityTypes reads the list of supported security types
func ReadSecurityTypes(r io.Reader) ([]uint8, error) {
	var numTypes uint8
	if err := readByte(r, &numTypes); err != nil {
		return nil, err
	}
	
	if numTypes == 0 {
		return nil, fmt.Errorf("server sent no security types")
	}
	
	types := make([]uint8, numTypes)
	if _, err := io.ReadFull(r, types); err != nil {
		return nil, err
	}
	
	return types, nil
}

// SendSecurityResult sends the security handshake result
func SendSecurityResult(w io.Writer, result uint32) error {
	msg := make([]byte, 4)
	msg[0] = uint8(result >> 24)
	msg[1] = uint8(result >> 16)
	msg[2] = uint8(result >> 8)
	msg[3] = uint8(result)
	_, err := w.Write(msg)
	return err
}

// ReadSecurityResult reads the security handshake result
func ReadSecurityResult(r io.Reader) (uint32, error) {
	result := make([]byte, 4)
	if _, err := io.ReadFull(r, result); err != nil {
		return 0, err
	}
	return uint32(result[0])<<24 | uint32(result[1])<<16 | uint32(result[2])<<8 | uint32(result[3]), nil
}

// SendServerInit sends the server initialization message
func SendServerInit(w io.Writer, init ServerInit) error {
	msg := make([]byte, 24+len(init.Name))
	
	// Width and height (big-endian 16-bit)
	msg[0] = uint8(init.Width >> 8)
	msg[1] = uint8(init.Width & 0xFF)
	msg[2] = uint8(init.Height >> 8)
	msg[3] = uint8(init.Height & 0xFF)
	
	// Pixel format (16 bytes)
	msg[4] = init.PixelFormat.BitsPerPixel
	msg[5] = init.PixelFormat.Depth
	msg[6] = init.PixelFormat.BigEndianFlag
	msg[7] = init.PixelFormat.TrueColorFlag
	msg[8] = uint8(init.PixelFormat.RedMax >> 8)
	msg[9] = uint8(init.PixelFormat.RedMax & 0xFF)
	msg[10] = uint8(init.PixelFormat.GreenMax >> 8)
	msg[11] = uint8(init.PixelFormat.GreenMax & 0xFF)
	msg[12] = uint8(init.PixelFormat.BlueMax >> 8)
	msg[13] = uint8(init.PixelFormat.BlueMax & 0xFF)
	msg[14] = init.PixelFormat.RedShift
	msg[15] = init.PixelFormat.GreenShift
	msg[16] = init.PixelFormat.BlueShift
	msg[17] = init.PixelFormat.Padding[0]
	msg[18] = init.PixelFormat.Padding[1]
	msg[19] = init.PixelFormat.Padding[2]
	
	// Name length (big-endian 32-bit)
	nameLen := uint32(len(init.Name))
	msg[20] = uint8(nameLen >> 24)
	msg[21] = uint8(nameLen >> 16)
	msg[22] = uint8(nameLen >> 8)
	msg[23] = uint8(nameLen & 0xFF)
	
	// Name
	copy(msg[24:], init.Name)
	
	_, err := w.Write(msg)
	return err
}

// ReadServerInit reads the server initialization message
func ReadServerInit(r io.Reader) (ServerInit, error) {
	var init ServerInit
	header := make([]byte, 24)
	
	if _, err := io.ReadFull(r, header); err != nil {
		return init, err
	}
	
	// Parse width and height
	init.Width = uint16(header[0])<<8 | uint16(header[1])
	init.Height = uint16(header[2])<<8 | uint16(header[3])
	
	// Parse pixel format
	init.PixelFormat = PixelFormat{
		BitsPerPixel:  header[4],
		Depth:         header[5],
		BigEndianFlag: header[6],
		TrueColorFlag: header[7],
		RedMax:        uint16(header[8])<<8 | uint16(header[9]),
		GreenMax:      uint16(header[10])<<8 | uint16(header[11]),
		BlueMax:       uint16(header[12])<<8 | uint16(header[13]),
		RedShift:      header[14],
		GreenShift:    header[15],
		BlueShift:     header[16],
		Padding:       [3]uint8{header[17], header[18], header[19]},
	}
	
	// Parse name length
	nameLen := uint32(header[20])<<24 | uint32(header[21])<<16 | uint32(header[22])<<8 | uint32(header[23])
	
	// Read name
	if nameLen > 0 {
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return init, err
		}
		init.Name = string(nameBytes)
	}
	
	init.NameLength = nameLen
	return init, nil
}

// Helper function to read a single byte
func readByte(r io.Reader, b *uint8) error {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	*b = buf[0]
	return nil
}