//go:build gui

// Package debugview provides an optional local preview window showing
// exactly what the framebuffer store is currently broadcasting to RFB
// clients. It is not part of the protocol surface; it exists purely
// for development and demo use, gated behind the "gui" build tag so
// production builds of the server never link GL/X11/DBus.
//
// Adapted from the teacher's viewer package (viewer.go /
// viewer_gui.go): the same fyne.App/Window/canvas.Image scaffolding,
// but pushed frames are now pulled from framebuffer.Store's generation
// counter instead of being shoved in ad hoc from an animation ticker.
package debugview

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"github.com/nfnt/resize"

	"github.com/driftwood-labs/rfbserver/framebuffer"
)

// Viewer shows the live contents of a framebuffer.Store in a window.
type Viewer struct {
	app      fyne.App
	window   fyne.Window
	image    *canvas.Image
	store    *framebuffer.Store
	maxWidth int
	done     chan struct{}
}

// New returns a Viewer titled title, subscribed to store. If maxWidth
// is greater than zero and a frame is wider than it, frames are
// downscaled (preserving aspect ratio) before being drawn — full
// 1080p+ repaints on every generation are wasted GPU work for a debug
// window.
func New(title string, store *framebuffer.Store, maxWidth int) *Viewer {
	a := app.New()
	w := a.NewWindow(title)

	img := canvas.NewImageFromResource(nil)
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels
	w.SetContent(container.NewBorder(nil, nil, nil, nil, img))

	return &Viewer{
		app:      a,
		window:   w,
		image:    img,
		store:    store,
		maxWidth: maxWidth,
		done:     make(chan struct{}),
	}
}

// Run subscribes to store generations on a background goroutine and
// blocks on the window's event loop until it's closed.
func (v *Viewer) Run() {
	go v.subscribeLoop()
	v.window.ShowAndRun()
	close(v.done)
}

func (v *Viewer) subscribeLoop() {
	var lastGen uint64
	for {
		snap, ok := v.store.Wait(lastGen, v.done)
		if !ok {
			return
		}
		lastGen = snap.Generation

		img := snapshotImage(snap)
		if v.maxWidth > 0 && snap.Width > v.maxWidth {
			img = resize.Resize(uint(v.maxWidth), 0, img, resize.Bilinear)
		}

		fyne.Do(func() {
			v.image.Image = img
			v.image.Refresh()
		})
	}
}

// snapshotImage wraps a snapshot's RGBA pixels directly as an
// image.RGBA without copying; the store never mutates a committed
// snapshot's slice in place (Commit stores the slice it is given, and
// the server's capture loop hands it a fresh copy every frame), so
// this is safe to hand to the renderer read-only.
func snapshotImage(snap framebuffer.Snapshot) image.Image {
	return &image.RGBA{
		Pix:    snap.Pixels,
		Stride: snap.Width * 4,
		Rect:   image.Rect(0, 0, snap.Width, snap.Height),
	}
}
