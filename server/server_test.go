package server

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/driftwood-labs/rfbserver/capture"
	"github.com/driftwood-labs/rfbserver/input"
)

func dial(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	url := "ws://" + addr + "/"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return c
}

// pending holds, per connection, bytes recvN has read past what its
// caller asked for; the next recvN on that connection starts with them.
var pending = map[*websocket.Conn][]byte{}

func recvN(t *testing.T, c *websocket.Conn, n int) []byte {
	t.Helper()
	buf := pending[c]
	for len(buf) < n {
		_, p, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		buf = append(buf, p...)
	}
	pending[c] = buf[n:]
	return buf[:n]
}

func newTestServer(t *testing.T, fps int) *Server {
	t.Helper()
	src := capture.NewSynthetic(64, 48, fps, capture.PatternWheel)
	srv := New(Config{Port: 0, Name: "Test"}, src, input.NopSink{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

func TestStartStopIdempotent(t *testing.T) {
	srv := newTestServer(t, 1000)
	if err := srv.Start(); err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}
	srv.Stop()
	srv.Stop() // must not block or panic
}

func TestActiveClientsTracksConnections(t *testing.T) {
	srv := newTestServer(t, 1000)

	if got := srv.ActiveClients(); got != 0 {
		t.Fatalf("ActiveClients = %d before any connection, want 0", got)
	}

	c := dial(t, srv.Addr())
	defer c.Close()

	// Drain the handshake so the session is fully established.
	recvN(t, c, 12)
	c.WriteMessage(websocket.BinaryMessage, []byte("RFB 003.008\n"))
	recvN(t, c, 2)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})
	recvN(t, c, 4)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})
	recvN(t, c, 4+16+4+len("Test")) // ServerInit

	deadline := time.Now().Add(2 * time.Second)
	for srv.ActiveClients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ActiveClients never reached 1, got %d", srv.ActiveClients())
		}
		time.Sleep(10 * time.Millisecond)
	}

	c.Close()

	deadline = time.Now().Add(2 * time.Second)
	for srv.ActiveClients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ActiveClients never returned to 0, got %d", srv.ActiveClients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCallbacksFireOnConnectAndDisconnect(t *testing.T) {
	srv := newTestServer(t, 1000)

	var connected, disconnected atomic.Int32
	srv.OnClientConnected = func() { connected.Add(1) }
	srv.OnClientDisconnected = func() { disconnected.Add(1) }

	c := dial(t, srv.Addr())
	recvN(t, c, 12)
	c.WriteMessage(websocket.BinaryMessage, []byte("RFB 003.008\n"))
	recvN(t, c, 2)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})
	recvN(t, c, 4)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})
	recvN(t, c, 4+16+4+len("Test"))
	c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for disconnected.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("OnClientDisconnected never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if connected.Load() != 1 {
		t.Errorf("OnClientConnected fired %d times, want 1", connected.Load())
	}
}

func TestBindFailureReportedSynchronously(t *testing.T) {
	src := capture.NewSynthetic(64, 48, 30, capture.PatternWheel)
	first := New(Config{Port: 0}, src, input.NopSink{})
	if err := first.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer first.Stop()

	addrParts := strings.Split(first.Addr(), ":")
	port := addrParts[len(addrParts)-1]
	var p int
	for _, c := range port {
		p = p*10 + int(c-'0')
	}

	second := New(Config{Port: p}, capture.NewSynthetic(64, 48, 30, capture.PatternWheel), input.NopSink{})
	if err := second.Start(); err == nil {
		t.Fatal("expected bind failure on already-used port")
	}
	if second.ActiveClients() != 0 {
		t.Fatalf("no workers should start on bind failure")
	}
}

func TestServerInitReportsTrueDimensionsOnFirstConnect(t *testing.T) {
	srv := newTestServer(t, 1000)

	c := dial(t, srv.Addr())
	defer c.Close()

	recvN(t, c, 12)
	c.WriteMessage(websocket.BinaryMessage, []byte("RFB 003.008\n"))
	recvN(t, c, 2)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})
	recvN(t, c, 4)
	c.WriteMessage(websocket.BinaryMessage, []byte{1})

	// The very first client's handshake races startCapture; Init/Resize
	// must already have run synchronously so this never reads 0x0.
	dims := recvN(t, c, 4)
	want := []byte{0x00, 0x40, 0x00, 0x30} // width=64, height=48
	if string(dims) != string(want) {
		t.Fatalf("ServerInit dims = % x, want % x (64x48)", dims, want)
	}
}

func TestSetQualityIsInert(t *testing.T) {
	srv := newTestServer(t, 1000)
	srv.SetQuality(5) // must not panic or change observable behavior
	srv.SetQuality(0)
}
