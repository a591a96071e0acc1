package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// progressInterval is how often websocket clients get a progress message.
const progressInterval = 250 * time.Millisecond

// webServer creates the http server exposing the render of iws:
// the finished bitmap, a status document and a websocket endpoint
func webServer(iws *imgWorkScheduler, port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /julia.bmp", bitmapHandler(iws))
	mux.HandleFunc("GET /status", statusHandler(iws))
	mux.HandleFunc("/ws", websocketHandler(iws))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost:%d", port)
	return srv
}

// bitmapHandler waits for the render to finish and sends the bitmap
func bitmapHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-iws.Done():
		case <-r.Context().Done():
			return
		}

		img, err := iws.GetImage()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/bmp")
		w.Header().Set("Content-Length", fmt.Sprint(len(img)))
		if _, err := w.Write(img); err != nil {
			log.Printf("send bitmap to %s: %v", r.RemoteAddr, err)
		}
	}
}

func statusHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(iws.progress()); err != nil {
			log.Printf("status: %v", err)
		}
	}
}

// websocketHandler handles the http ws endpoint
// the client gets progress messages until the render is done, then the bitmap as one binary message
func websocketHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten once the server is reachable from outside localhost
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		log.Printf("got connection from: %s", r.RemoteAddr)
		if err := streamRender(r.Context(), c, iws); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("websocket %s: %v", r.RemoteAddr, err)
			}
			return
		}
		c.Close(websocket.StatusNormalClosure, "render sent")
	}
}

func streamRender(ctx context.Context, c *websocket.Conn, iws *imgWorkScheduler) error {
	// nothing is read from the client, but control frames still need a reader
	ctx = c.CloseRead(ctx)

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		if err := wsjson.Write(ctx, c, iws.progress()); err != nil {
			return fmt.Errorf("write progress: %w", err)
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-iws.Done():
			img, err := iws.GetImage()
			if err != nil {
				return fmt.Errorf("get image: %w", err)
			}
			if err := wsjson.Write(ctx, c, iws.progress()); err != nil {
				return fmt.Errorf("write progress: %w", err)
			}
			if err := c.Write(ctx, websocket.MessageBinary, img); err != nil {
				return fmt.Errorf("write bitmap: %w", err)
			}
			return nil
		case <-ticker.C:
		}
	}
}
