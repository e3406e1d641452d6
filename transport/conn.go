package transport

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Upgrader performs the HTTP-to-WebSocket upgrade handshake. Per
// spec §4.3 this server does no subprotocol negotiation, no
// extensions, and no origin validation — policy fixed at this layer;
// a host embedding that wants origin gating adds it upstream of
// Upgrade. Grounded on the teacher's websockify.go upgrader value.
type Upgrader struct {
	inner websocket.Upgrader
}

// NewUpgrader returns an Upgrader configured for RFB-over-WebSocket.
func NewUpgrader() *Upgrader {
	return &Upgrader{
		inner: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Upgrade completes the WebSocket handshake on r and returns a Conn
// ready to carry RFB bytes as binary frames.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := u.inner.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c := &Conn{ws: ws}
	ws.SetPingHandler(func(appData string) error {
		return ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	return c, nil
}

// Conn carries RFB bytes over a single WebSocket connection: outbound
// writes are whole binary frames, and inbound reads present the
// stream of binary message payloads as a continuous byte stream since
// an RFB message may straddle WebSocket message boundaries (§4.3).
type Conn struct {
	ws     *websocket.Conn
	reader io.Reader // current message's reader, nil when exhausted
}

// Read implements io.Reader over the concatenation of successive
// binary WebSocket messages. Text messages are skipped. A Close frame
// is handled by gorilla's default close handler, which echoes it; the
// next read then returns an error, which ends the stream.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			msgType, r, err := c.ws.NextReader()
			if err != nil {
				return 0, err
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			c.reader = r
		}
		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// WriteMessage writes p as a single unmasked binary WebSocket frame.
func (c *Conn) WriteMessage(p []byte) error {
	return c.ws.WriteMessage(websocket.BinaryMessage, p)
}

// Write implements io.Writer by sending p as one binary WebSocket
// frame, letting Conn stand in for net.Conn in the rfb package's
// handshake functions.
func (c *Conn) Write(p []byte) (int, error) {
	if err := c.WriteMessage(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline sets the deadline for future Read calls.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future WriteMessage calls.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
