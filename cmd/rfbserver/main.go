package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftwood-labs/rfbserver/capture"
	"github.com/driftwood-labs/rfbserver/debugview"
	"github.com/driftwood-labs/rfbserver/input"
	"github.com/driftwood-labs/rfbserver/server"
	"github.com/driftwood-labs/rfbserver/version"
)

func main() {
	var (
		port       = flag.Int("port", 5900, "Port to listen on")
		name       = flag.String("name", "rfbserver", "Desktop name advertised in ServerInit")
		width      = flag.Int("width", 1920, "Synthetic capture surface width")
		height     = flag.Int("height", 1080, "Synthetic capture surface height")
		capturePat = flag.String("capture", "wheel", "Synthetic capture pattern: wheel, plasma, gradient")
		fps        = flag.Int("fps", 30, "Synthetic capture frame rate")
		gui        = flag.Bool("gui", false, "Show a local preview window of the streamed framebuffer")
		guiMaxW    = flag.Int("gui-max-width", 960, "Downscale the preview window to at most this width (0 disables)")
		showVer    = flag.Bool("version", false, "Print version and exit")
		help       = flag.Bool("help", false, "Show this help message")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.Full())
		os.Exit(0)
	}

	if *help {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "rfbserver - RFB/VNC server streaming a captured desktop over WebSocket\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -port 5900\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 5900 -capture plasma -gui\n", os.Args[0])
		os.Exit(0)
	}

	pattern := capture.Pattern(*capturePat)
	switch pattern {
	case capture.PatternWheel, capture.PatternPlasma, capture.PatternGradient:
	default:
		log.Fatalf("unknown capture pattern %q", *capturePat)
	}

	source := capture.NewSynthetic(*width, *height, *fps, pattern)
	srv := server.New(server.Config{Port: *port, Name: *name}, source, input.NopSink{})

	srv.OnClientConnected = func() {
		log.Printf("client connected (active=%d)", srv.ActiveClients())
	}
	srv.OnClientDisconnected = func() {
		log.Printf("client disconnected (active=%d)", srv.ActiveClients())
	}
	srv.OnError = func(err error) {
		log.Printf("server error: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	log.Printf("rfbserver %s listening on %s, name=%q, capture=%s %dx%d@%dfps",
		version.Version(), srv.Addr(), *name, pattern, *width, *height, *fps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down...")
		srv.Stop()
		os.Exit(0)
	}()

	if *gui {
		// In a build with the "gui" tag this blocks on the window event
		// loop, which must run on the main goroutine per fyne's platform
		// requirements; without the tag Run returns at once. Either way
		// the server keeps running afterwards until a signal arrives.
		debugview.New(fmt.Sprintf("rfbserver - %s", *name), srv.Store(), *guiMaxW).Run()
	}

	select {}
}
