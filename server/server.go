// Package server is the lifecycle controller (C6): it owns the HTTP
// listener that upgrades clients to RFB-over-WebSocket, gates the
// capture worker on the number of active clients, and exposes the
// minimal control surface a host embedding needs. Grounded on
// websockify.go's Server/Config/New/Serve(ctx) shape, generalized with
// the capture-gating and callback-fan-out behavior vnc_server.cc's
// ClientHandler/CaptureLoop pair describes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftwood-labs/rfbserver/capture"
	"github.com/driftwood-labs/rfbserver/framebuffer"
	"github.com/driftwood-labs/rfbserver/input"
	"github.com/driftwood-labs/rfbserver/session"
	"github.com/driftwood-labs/rfbserver/transport"
)

// Config is the single construction-time configuration record (§6).
type Config struct {
	Port int
	// Password is reserved for a future security type; this server
	// only ever advertises "None" and never reads or checks it.
	Password string
	// Name becomes the RFB ServerInit desktop name.
	Name string
}

// Server is the RFB-over-WebSocket lifecycle controller: one accept
// loop, one capture worker gated on active client count, and any
// number of concurrently running sessions.
type Server struct {
	cfg    Config
	store  *framebuffer.Store
	source capture.Source
	sink   input.Sink

	OnClientConnected    func()
	OnClientDisconnected func()
	OnError              func(error)

	running       atomic.Bool
	activeClients atomic.Int32

	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}
	stopCh     chan struct{}

	captureMu      sync.Mutex
	captureRunning bool
	captureCancel  context.CancelFunc
	captureDone    chan struct{}
}

// New returns a Server that streams frames from source and forwards
// decoded input events to sink.
func New(cfg Config, source capture.Source, sink input.Sink) *Server {
	if cfg.Name == "" {
		cfg.Name = "rfbserver"
	}
	return &Server{
		cfg:    cfg,
		store:  framebuffer.New(),
		source: source,
		sink:   sink,
	}
}

// SetQuality is reserved for future encoding-quality negotiation; this
// server has exactly one encoding (Raw) and the call is inert.
func (s *Server) SetQuality(int) {}

// ActiveClients returns the number of sessions currently being served.
// A session counts from the moment its WebSocket upgrade completes,
// before the RFB handshake, until it exits; sessions still handshaking
// or failing the handshake are included.
func (s *Server) ActiveClients() int {
	return int(s.activeClients.Load())
}

// Store returns the framebuffer store sessions are served from. Exposed
// so a host embedding (e.g. a debug preview window) can subscribe to
// the same generations being streamed to RFB clients without the
// server needing to know anything about debugview.
func (s *Server) Store() *framebuffer.Store {
	return s.store
}

// Addr returns the address the server is listening on, or "" if Start
// has not been called yet. Useful for tests and for logging the
// ephemeral port chosen when Config.Port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start begins accepting connections. Idempotent: calling it while
// already running is a no-op. A bind failure is reported synchronously
// and no workers are started (§7, error kind 4).
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = ln

	s.stopCh = make(chan struct{})

	upgrader := transport.NewUpgrader()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r)
		if err != nil {
			s.reportError(fmt.Errorf("server: upgrade: %w", err))
			return
		}
		s.handleSession(conn)
	})

	s.httpServer = &http.Server{
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.serveDone = make(chan struct{})
	go func() {
		defer close(s.serveDone)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.reportError(fmt.Errorf("server: serve: %w", err))
		}
	}()

	return nil
}

// Stop joins the accept loop and, if still running, the capture
// worker. Idempotent: calling it while already stopped is a no-op.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.stopCh)
	if s.httpServer != nil {
		s.httpServer.Close()
	}
	if s.serveDone != nil {
		<-s.serveDone
	}
	s.stopCapture()
}

func (s *Server) reportError(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}

// handleSession runs one client from upgraded socket to close,
// gating the capture worker on the 0↔1 active-client transitions
// (§4.6). Session workers are detached: this call returns only when
// the session itself exits, and is always invoked from its own
// goroutine spawned by net/http per connection.
func (s *Server) handleSession(conn *transport.Conn) {
	if s.activeClients.Add(1) == 1 {
		s.startCapture()
	}
	if s.OnClientConnected != nil {
		s.OnClientConnected()
	}

	sess := session.New(conn, s.store, s.sink, s.cfg.Name)
	if err := sess.Serve(s.stopCh); err != nil {
		s.reportError(fmt.Errorf("server: session: %w", err))
	}

	if s.OnClientDisconnected != nil {
		s.OnClientDisconnected()
	}
	if s.activeClients.Add(-1) == 0 {
		s.stopCapture()
	}
}

// startCapture launches the capture worker if it is not already
// running. Safe to call repeatedly; only the first call after a stop
// has an effect. Init/Resize run synchronously on the caller's
// goroutine so that by the time startCapture returns, the framebuffer
// store already reports the true dimensions — a session handshaking
// concurrently with the first client's connect must never observe a
// 0x0 ServerInit (§7 error kind 4, spec.md:197).
func (s *Server) startCapture() {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	if s.captureRunning {
		return
	}

	width, height, err := s.source.Init()
	if err != nil {
		s.reportError(fmt.Errorf("server: capture init: %w", err))
		return
	}
	s.store.Resize(width, height)

	s.captureRunning = true
	ctx, cancel := context.WithCancel(context.Background())
	s.captureCancel = cancel
	done := make(chan struct{})
	s.captureDone = done
	go s.captureLoop(ctx, done, width, height)
}

// stopCapture signals the capture worker to exit and joins it.
func (s *Server) stopCapture() {
	s.captureMu.Lock()
	if !s.captureRunning {
		s.captureMu.Unlock()
		return
	}
	cancel := s.captureCancel
	done := s.captureDone
	s.captureRunning = false
	s.captureMu.Unlock()

	cancel()
	<-done
}

// captureAcquireTimeout bounds each Acquire call so the worker can
// observe cancellation promptly (§5 suspension point (b)).
const captureAcquireTimeout = 100 * time.Millisecond

// captureLoop is the sole writer to the framebuffer store. Init/Resize
// have already run synchronously in startCapture by the time this
// goroutine starts. A failed Acquire is retried after a short backoff,
// up to maxRetries consecutive failures; a persistent capture failure
// or a display-mode change ends the worker, and per §7 error kind 3 it
// is re-initialized on the next active-clients 0→1 transition.
func (s *Server) captureLoop(ctx context.Context, done chan struct{}, width, height int) {
	defer close(done)
	defer s.source.Shutdown()

	const (
		maxRetries   = 3
		retryBackoff = 50 * time.Millisecond
	)
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delta, err := s.source.Acquire(captureAcquireTimeout)
		if err != nil {
			if errors.Is(err, capture.ErrTimeout) {
				continue
			}
			if !errors.Is(err, capture.ErrModeChanged) && failures < maxRetries {
				failures++
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryBackoff):
				}
				continue
			}
			s.reportError(fmt.Errorf("server: capture acquire: %w", err))
			return
		}
		failures = 0

		src := s.source.Pixels()
		pixels := make([]byte, len(src))
		copy(pixels, src)

		rects := delta.Rects
		if delta.Full {
			rects = nil // Store.Commit substitutes a full-surface rect for an empty set.
		}
		s.store.Commit(pixels, rects, width, height)
	}
}
