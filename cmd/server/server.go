package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"

	julia "github.com/JulianKunkel/julia-sets"
)

// main is the entry point for the Julia set render server.
// The server renders the image in tiles on its own workers and hands out
// progress and the finished bitmap over http and websocket.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		port     = flag.Int("port", 8080, "http port")
		preset   = flag.String("preset", julia.Spirals.Name, "c value to render: "+presetNames())
		size     = flag.Int("size", 1024, "image width and height in pixels")
		scheme   = flag.Int("scheme", int(julia.DefaultScheme), "color scheme")
		budget   = flag.Int("budget", 0, "iteration budget per pixel (0: the color maximum of the scheme)")
		workers  = flag.Int("workers", runtime.NumCPU(), "render workers")
		tileSize = flag.Int("tile", 64, "tile width and height")
	)
	flag.Parse()

	pr, ok := julia.PresetByName(*preset)
	if !ok {
		return fmt.Errorf("unknown preset %q, want one of %s", *preset, presetNames())
	}
	if *tileSize <= 0 {
		return fmt.Errorf("tile size %d must be positive", *tileSize)
	}

	s := julia.Scheme(*scheme).Normalize()
	p := julia.Params{C: pr.C, Size: *size, Budget: *budget, Workers: *workers}.WithDefaults(s)
	if err := p.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}

	log.Printf("rendering %s (c = %v) at %dx%d with scheme %v", pr.Name, pr.C, p.Size, p.Size, s)
	imgWorkScheduler := newImgWorkScheduler(p, s, *tileSize)
	imgWorkScheduler.start(p.Workers, localRenderer{})

	httpServer := webServer(imgWorkScheduler, *port)
	if err := httpServer.ListenAndServe(); err != nil {
		return fmt.Errorf("httpServer: %w", err)
	}
	return nil
}

func presetNames() string {
	names := make([]string, len(julia.Presets))
	for i, p := range julia.Presets {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
