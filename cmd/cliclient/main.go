// cliclient is a CLI client for the Julia set render server.
// It connects to the server over a websocket, follows the render progress and saves the finished bitmap.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/coder/websocket"

	"github.com/JulianKunkel/julia-sets/bmp"
)

// maxBitmapSize bounds the bitmap message accepted from the server.
const maxBitmapSize = 1 << 30

// progress mirrors the server's progress messages.
type progress struct {
	Finished  float32 `json:"finished"`
	Workers   int     `json:"workers"`
	Tiles     int     `json:"tiles"`
	TilesDone int     `json:"tilesDone"`
	Done      bool    `json:"done"`
}

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	out := flag.String("o", "julia.bmp", "output file")
	flag.Parse()

	log.Printf("Starting CLI client...")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, "ws://"+*addr+"/ws", *out); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run connects to the render server, waits for the rendered image, and saves it as a bitmap file.
// Returns an error if any step fails.
func run(ctx context.Context, url, filename string) error {
	// Step 1: Connect to the render server
	log.Printf("Connecting to Julia set server at %s...", url)
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer c.CloseNow()
	c.SetReadLimit(maxBitmapSize)

	// Step 2: Follow progress until the server sends the bitmap
	img, err := receiveBitmap(ctx, c)
	if err != nil {
		return err
	}

	// Step 3: Check the bitmap before replacing anything on disk
	width, height, rgb, err := bmp.Decode(bytes.NewReader(img))
	if err != nil {
		return fmt.Errorf("server sent an invalid bitmap: %w", err)
	}

	// Step 4: Save the rendered image
	log.Printf("Saving %dx%d image to %q...", width, height, filename)
	if err := bmp.WriteFile(filename, width, height, rgb); err != nil {
		return fmt.Errorf("failed to write bitmap: %w", err)
	}

	c.Close(websocket.StatusNormalClosure, "")
	log.Printf("Fully rendered image saved to %q", filename)
	return nil
}

func receiveBitmap(ctx context.Context, c *websocket.Conn) ([]byte, error) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if typ == websocket.MessageBinary {
			return data, nil
		}

		var pr progress
		if err := json.Unmarshal(data, &pr); err != nil {
			return nil, fmt.Errorf("progress message: %w", err)
		}
		log.Printf("finished: %.1f%% (%d/%d tiles, %d workers)", 100*pr.Finished, pr.TilesDone, pr.Tiles, pr.Workers)
	}
}
