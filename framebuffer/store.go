// Package framebuffer holds the shared capture-to-wire framebuffer
// store: the single-writer/many-reader broadcast point between the
// capture source and the RFB sessions that stream it to clients.
package framebuffer

import "sync"

// Rect is a dirty-rectangle: a bounding box of pixels that changed
// since the previous committed generation.
type Rect struct {
	X, Y, W, H uint16
}

// Snapshot is a stable, read-only view of one committed generation.
// The Pixels slice must not be mutated by the reader; it is shared
// with the store and, until the writer's next Commit, with every
// other concurrent reader.
type Snapshot struct {
	Pixels     []byte
	Rects      []Rect
	Width      int
	Height     int
	Generation uint64
}

// Store holds the latest full-resolution RGBA frame, its dirty-rect
// set, and a monotonically increasing generation counter. Exactly one
// writer (the capture worker) calls Commit; any number of sessions
// call Read or Wait concurrently.
type Store struct {
	mu         sync.RWMutex
	pixels     []byte
	rects      []Rect
	width      int
	height     int
	generation uint64
	changed    chan struct{} // closed and replaced on every Commit
}

// New returns an empty store at generation 0.
func New() *Store {
	return &Store{changed: make(chan struct{})}
}

// Resize allocates the pixel buffer for a new display mode. Must only
// be called before any reader holds a Snapshot from this store — in
// practice, at startup once the capture source reports its true
// dimensions, never while the capture worker is running concurrently
// with sessions.
func (s *Store) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
	s.pixels = make([]byte, width*height*4)
}

// Dims returns the current framebuffer dimensions.
func (s *Store) Dims() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Commit atomically replaces the store's pixel buffer and dirty-rect
// set and advances the generation counter, then wakes any readers
// parked in Wait.
//
// If rects is empty and the store has never been committed (G was 0),
// a single full-surface rect is substituted. If rects is empty and G
// was already > 0, the generation still advances and a full-surface
// rect is recorded — the conservative choice that guarantees forward
// progress even when the capture source reports no metadata.
//
// Every rect is clamped to width/height before storage (§7, error kind
// 5): a capture source reporting a dirty rect that overruns the
// surface must not let a reader index past the pixel buffer.
func (s *Store) Commit(pixels []byte, rects []Rect, width, height int) {
	s.mu.Lock()
	if len(rects) == 0 {
		rects = []Rect{{X: 0, Y: 0, W: uint16(width), H: uint16(height)}}
	} else {
		rects = clampRects(rects, width, height)
	}
	s.pixels = pixels
	s.rects = rects
	s.width = width
	s.height = height
	s.generation++
	old := s.changed
	s.changed = make(chan struct{})
	s.mu.Unlock()
	close(old)
}

// clampRects clips each rect to the [0,width)x[0,height) surface,
// dropping any rect that starts at or beyond a bound and shrinking any
// rect that overruns one.
func clampRects(rects []Rect, width, height int) []Rect {
	if width <= 0 || height <= 0 {
		return nil
	}
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if int(r.X) >= width || int(r.Y) >= height {
			continue
		}
		w, h := int(r.W), int(r.H)
		if int(r.X)+w > width {
			w = width - int(r.X)
		}
		if int(r.Y)+h > height {
			h = height - int(r.Y)
		}
		if w <= 0 || h <= 0 {
			continue
		}
		out = append(out, Rect{X: r.X, Y: r.Y, W: uint16(w), H: uint16(h)})
	}
	return out
}

// Read returns the current snapshot. Generation 0 means no frame has
// been committed yet.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Pixels:     s.pixels,
		Rects:      s.rects,
		Width:      s.width,
		Height:     s.height,
		Generation: s.generation,
	}
}

// Wait blocks until the store's generation exceeds lastSeen or until
// done is closed, whichever comes first. It returns the current
// snapshot and true, or a zero Snapshot and false if done fired first.
func (s *Store) Wait(lastSeen uint64, done <-chan struct{}) (Snapshot, bool) {
	for {
		s.mu.RLock()
		snap := s.snapshotLocked()
		ch := s.changed
		s.mu.RUnlock()

		if snap.Generation > lastSeen {
			return snap, true
		}

		select {
		case <-ch:
			// Generation advanced; loop and re-check.
		case <-done:
			return Snapshot{}, false
		}
	}
}
