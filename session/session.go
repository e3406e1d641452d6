// Package session implements the per-client RFB state machine (C4):
// protocol and security negotiation, ServerInit, client-to-server
// message demultiplexing, and update emission. Grounded on the
// handshake sequence in the teacher's cmd/vncserver/main.go
// (doVNCHandshake, processCompleteMessages) and the connection
// lifecycle in websockify.go's forwardTCP/forwardWeb pair, generalized
// from raw net.Conn plumbing to the rfb wire-protocol helpers and the
// framebuffer store's generation-based broadcast.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/driftwood-labs/rfbserver/framebuffer"
	"github.com/driftwood-labs/rfbserver/input"
	"github.com/driftwood-labs/rfbserver/rfb"
	"github.com/driftwood-labs/rfbserver/transport"
)

// ErrUnsupportedVersion is returned when the client's declared RFB
// version is not one of 003.003, 003.007, or 003.008.
var ErrUnsupportedVersion = errors.New("session: unsupported RFB version")

// ErrUnsupportedSecurityType is returned when the client selects a
// security type other than None.
var ErrUnsupportedSecurityType = errors.New("session: unsupported security type")

// ErrUnknownMessage is returned when a client sends a message type
// this server does not recognize. Per spec this is a connection
// failure, not a message to skip.
var ErrUnknownMessage = errors.New("session: unknown client message type")

const readPollInterval = 1 * time.Second

// Session is one client's RFB state machine, running two concurrent
// activities for its Streaming lifetime: an inbound demux loop (this
// goroutine) and an outbound update-emission loop (a second
// goroutine), per §5.
type Session struct {
	conn  *transport.Conn
	store *framebuffer.Store
	sink  input.Sink
	name  string

	// OnClose fires exactly once, on any exit path, so the lifecycle
	// controller (C6) can decrement active_clients. Runs on the
	// goroutine that called Serve, after conn has been closed.
	OnClose func()

	mu                 sync.Mutex
	updateRequested    bool
	lastSeenGeneration uint64
	wake               chan struct{}
}

// New returns a Session ready to run over conn, sourcing frames from
// store and forwarding decoded input events to sink. name becomes the
// RFB ServerInit desktop name.
func New(conn *transport.Conn, store *framebuffer.Store, sink input.Sink, name string) *Session {
	return &Session{
		conn:            conn,
		store:           store,
		sink:            sink,
		name:            name,
		updateRequested: true,
		wake:            make(chan struct{}, 1),
	}
}

// Serve runs the handshake and then the Streaming phase until the
// peer disconnects, a protocol violation occurs, or done is closed.
// It always closes conn and fires OnClose before returning.
func (s *Session) Serve(done <-chan struct{}) error {
	defer func() {
		s.conn.Close()
		if s.OnClose != nil {
			s.OnClose()
		}
	}()

	if err := s.handshake(); err != nil {
		return fmt.Errorf("session: handshake: %w", err)
	}

	// stop is the session's own cancellation signal, closed the first
	// time either loop exits on its own — this is what unparks a
	// writeLoop blocked in store.Wait when the reader hits a peer
	// error (closing the socket alone would not do that, since Wait
	// only watches its done channel, not the connection).
	stop := make(chan struct{})
	var stopOnce sync.Once
	triggerStop := func() { stopOnce.Do(func() { close(stop) }) }

	merged := make(chan struct{})
	go func() {
		select {
		case <-done:
		case <-stop:
		}
		close(merged)
	}()

	writerErr := make(chan error, 1)
	go func() {
		err := s.writeLoop(merged)
		triggerStop()
		writerErr <- err
	}()

	readErr := s.readLoop(merged)
	triggerStop()
	<-writerErr

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return readErr
	}
	return nil
}

// handshake performs protocol-version, security, and ServerInit
// negotiation per §4.4. Connecting → WsHandshake is the caller's
// concern (the WebSocket upgrade already happened); this covers
// RfbVersion → RfbSecurity → RfbInit.
func (s *Session) handshake() error {
	if err := rfb.SendRFBVersion(s.conn); err != nil {
		return err
	}
	clientVersion, err := rfb.ReadRFBVersion(s.conn)
	if err != nil {
		return err
	}
	switch clientVersion {
	case "RFB 003.003\n", "RFB 003.007\n", "RFB 003.008\n":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, clientVersion)
	}

	if err := rfb.SendSecurityTypes(s.conn, []uint8{rfb.SecurityNone}); err != nil {
		return err
	}
	chosen := make([]byte, 1)
	if _, err := io.ReadFull(s.conn, chosen); err != nil {
		return err
	}
	if chosen[0] != rfb.SecurityNone {
		return fmt.Errorf("%w: %d", ErrUnsupportedSecurityType, chosen[0])
	}

	if clientVersion == "RFB 003.008\n" {
		if err := rfb.SendSecurityResult(s.conn, 0); err != nil {
			return err
		}
	}

	clientInit := make([]byte, rfb.ClientInitLength)
	if _, err := io.ReadFull(s.conn, clientInit); err != nil {
		return err
	}

	width, height := s.store.Dims()
	init := rfb.ServerInit{
		Width:       uint16(width),
		Height:      uint16(height),
		PixelFormat: rfb.DefaultPixelFormat(),
		Name:        s.name,
	}
	return rfb.SendServerInit(s.conn, init)
}

// readLoop is the Streaming phase's inbound demux (§4.4). A read
// blocked on the socket is released by closing conn as soon as done
// closes (a WebSocket read that times out leaves the connection
// unusable, so read deadlines are not used to poll for done). Decoded
// input events are forwarded to the session's Sink.
func (s *Session) readLoop(done <-chan struct{}) error {
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-done:
			s.conn.Close()
		case <-finished:
		}
	}()

	for {
		var msgType [1]byte
		if _, err := io.ReadFull(s.conn, msgType[:]); err != nil {
			select {
			case <-done:
				return nil
			default:
			}
			return err
		}

		if err := s.handleMessage(msgType[0]); err != nil {
			return err
		}
	}
}

func (s *Session) handleMessage(msgType byte) error {
	switch msgType {
	case rfb.SetPixelFormat:
		body := make([]byte, rfb.SetPixelFormatLength-1)
		if _, err := io.ReadFull(s.conn, body); err != nil {
			return err
		}
		// Accepted but ignored: this server always serves the fixed
		// PixelFormat from §3 regardless of what the client asks for.

	case rfb.SetEncodings:
		header := make([]byte, 3)
		if _, err := io.ReadFull(s.conn, header); err != nil {
			return err
		}
		count := int(header[1])<<8 | int(header[2])
		if count > 0 {
			body := make([]byte, count*4)
			if _, err := io.ReadFull(s.conn, body); err != nil {
				return err
			}
		}
		// Only Raw (0) is ever emitted; whatever the client listed is
		// silently discarded.

	case rfb.FramebufferUpdateRequest:
		body := make([]byte, rfb.FramebufferUpdateRequestLength)
		if _, err := io.ReadFull(s.conn, body); err != nil {
			return err
		}
		if _, err := rfb.DecodeFramebufferUpdateRequest(body); err != nil {
			return err
		}
		s.requestUpdate()

	case rfb.KeyEvent:
		body := make([]byte, rfb.KeyEventLength)
		if _, err := io.ReadFull(s.conn, body); err != nil {
			return err
		}
		ev, err := rfb.DecodeKeyEvent(body)
		if err != nil {
			return err
		}
		s.sink.PostKey(ev.Keysym, ev.Down)

	case rfb.PointerEvent:
		body := make([]byte, rfb.PointerEventLength)
		if _, err := io.ReadFull(s.conn, body); err != nil {
			return err
		}
		ev, err := rfb.DecodePointerEvent(body)
		if err != nil {
			return err
		}
		s.sink.PostPointer(int(ev.X), int(ev.Y), ev.ButtonMask)

	case rfb.ClientCutText:
		header := make([]byte, 7)
		if _, err := io.ReadFull(s.conn, header); err != nil {
			return err
		}
		total, err := rfb.ClientCutTextLength(header)
		if err != nil {
			return err
		}
		textLen := total - 7
		if textLen > 0 {
			text := make([]byte, textLen)
			if _, err := io.ReadFull(s.conn, text); err != nil {
				return err
			}
		}
		// Drained and discarded per §4.4.

	default:
		return fmt.Errorf("%w: %d", ErrUnknownMessage, msgType)
	}
	return nil
}

// requestUpdate marks an update as wanted and wakes the writer loop
// if it is parked waiting for a request rather than a new generation.
func (s *Session) requestUpdate() {
	s.mu.Lock()
	s.updateRequested = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// writeLoop is the Streaming phase's outbound update emission (§4.4).
// It emits a FramebufferUpdate exactly when update_requested is true
// and the store has advanced past last_seen_generation, per §4.4's
// dual condition, and otherwise parks — either on a fresh request
// arriving or on done closing.
func (s *Session) writeLoop(done <-chan struct{}) error {
	for {
		s.mu.Lock()
		requested := s.updateRequested
		last := s.lastSeenGeneration
		s.mu.Unlock()

		if !requested {
			select {
			case <-done:
				return nil
			case <-s.wake:
				continue
			}
		}

		snap, ok := s.store.Wait(last, done)
		if !ok {
			return nil
		}

		// Cleared before writing, so a request that arrives while this
		// update is on the wire stays set and is answered next.
		s.mu.Lock()
		s.lastSeenGeneration = snap.Generation
		s.updateRequested = false
		s.mu.Unlock()

		if err := s.emitUpdate(snap); err != nil {
			return err
		}
	}
}

// emitUpdate builds and writes one FramebufferUpdate message covering
// snap's dirty rects as a single WebSocket binary frame, extracting
// each rectangle's pixels from the canonical RGBA store into the
// wire's BGRX byte order (§3).
func (s *Session) emitUpdate(snap framebuffer.Snapshot) error {
	if len(snap.Rects) == 0 {
		return nil
	}

	msg := rfb.EncodeFramebufferUpdateHeader(uint16(len(snap.Rects)))
	for _, rect := range snap.Rects {
		msg = append(msg, rfb.EncodeRectHeader(rect.X, rect.Y, rect.W, rect.H, rfb.RawEncoding)...)
		msg = append(msg, rfb.ExtractRectWire(snap.Pixels, snap.Width, int(rect.X), int(rect.Y), int(rect.W), int(rect.H))...)
	}
	return s.conn.WriteMessage(msg)
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
