// Package transport implements the WebSocket upgrade and binary
// message framing (C3) that carries RFB bytes to and from the
// browser-based viewers this server targets.
package transport

import (
	"crypto/sha1"
	"encoding/base64"
)

// websocketGUID is the RFC 6455 handshake magic value.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes the Sec-WebSocket-Accept value for a given
// Sec-WebSocket-Key per RFC 6455 §1.3: base64(SHA1(key + GUID)).
//
// gorilla/websocket's Upgrader computes this internally during
// Upgrade and does not export the primitive on its own, so it is
// reimplemented here against the standard library to give the wire
// round-trip in spec §8 ("s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" for the RFC
// 6455 example key) an independently verifiable conformance check.
func AcceptKey(secWebSocketKey string) string {
	h := sha1.New()
	h.Write([]byte(secWebSocketKey))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
