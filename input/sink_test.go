package input

import "testing"

type recordingSink struct {
	x, y int
	mask uint8
	keys []struct {
		sym  uint32
		down bool
	}
}

func (r *recordingSink) PostPointer(x, y int, buttonMask uint8) {
	r.x, r.y, r.mask = x, y, buttonMask
}

func (r *recordingSink) PostKey(keysym uint32, down bool) {
	r.keys = append(r.keys, struct {
		sym  uint32
		down bool
	}{keysym, down})
}

func TestNormalizingSinkScalesCoordinates(t *testing.T) {
	rec := &recordingSink{}
	s := NewNormalizingSink(rec, 1920, 1080)

	s.PostPointer(300, 200, ButtonLeft)

	wantX := 300 * 65535 / 1920
	wantY := 200 * 65535 / 1080
	if rec.x != wantX || rec.y != wantY {
		t.Errorf("got (%d,%d), want (%d,%d)", rec.x, rec.y, wantX, wantY)
	}
	if rec.mask != ButtonLeft {
		t.Errorf("mask = %d, want %d", rec.mask, ButtonLeft)
	}
}

func TestNormalizingSinkCornerCases(t *testing.T) {
	rec := &recordingSink{}
	s := NewNormalizingSink(rec, 1920, 1080)

	s.PostPointer(1919, 1079, 0)
	if rec.x != 1919*65535/1920 || rec.y != 1079*65535/1080 {
		t.Errorf("got (%d,%d)", rec.x, rec.y)
	}

	s.PostPointer(0, 0, 0)
	if rec.x != 0 || rec.y != 0 {
		t.Errorf("got (%d,%d), want (0,0)", rec.x, rec.y)
	}
}

func TestNormalizingSinkForwardsKeyEvents(t *testing.T) {
	rec := &recordingSink{}
	s := NewNormalizingSink(rec, 800, 600)

	s.PostKey(0xFF0D, true)
	s.PostKey(0xFF0D, false)

	if len(rec.keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(rec.keys))
	}
	if rec.keys[0].sym != 0xFF0D || !rec.keys[0].down {
		t.Errorf("keys[0] = %+v, want down keysym 0xFF0D", rec.keys[0])
	}
	if rec.keys[1].down {
		t.Errorf("keys[1].down = true, want false")
	}
}

func TestNopSinkDoesNotPanic(t *testing.T) {
	var s Sink = NopSink{}
	s.PostPointer(10, 10, ButtonLeft)
	s.PostKey(0x41, true)
}
