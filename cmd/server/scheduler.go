package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	julia "github.com/JulianKunkel/julia-sets"
	"github.com/JulianKunkel/julia-sets/bmp"
)

type imgWorkScheduler struct {
	workers int
	params  julia.Params
	scheme  julia.Scheme
	result  julia.Result

	ctx       context.Context
	ctxCancel context.CancelFunc

	totalPixels    int
	finishedPixels int
	totalTiles     int

	unstarted map[image.Rectangle]struct{}
	inProcess map[image.Rectangle]struct{}
	finished  map[image.Rectangle]struct{}

	bitmap []byte
	err    error
	m      sync.Mutex
}

func newImgWorkScheduler(p julia.Params, scheme julia.Scheme, tileSize int) *imgWorkScheduler {
	result := julia.NewResult(p)
	allTilesSlice := julia.SplitRect(result.Grid.Bounds(), tileSize, tileSize)
	allTiles := make(map[image.Rectangle]struct{}, len(allTilesSlice))
	for _, t := range allTilesSlice {
		allTiles[t] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &imgWorkScheduler{
		params:      p,
		scheme:      scheme.Normalize(),
		result:      result,
		unstarted:   allTiles,
		inProcess:   make(map[image.Rectangle]struct{}),
		finished:    make(map[image.Rectangle]struct{}),
		totalPixels: p.Size * p.Size,
		totalTiles:  len(allTiles),
		ctx:         ctx,
		ctxCancel:   cancel,
	}
}

func (iws *imgWorkScheduler) popTile() (tile image.Rectangle, found bool) {
	iws.m.Lock()
	defer iws.m.Unlock()

	// Get unstarted tile
	if len(iws.unstarted) > 0 {
		for tile = range iws.unstarted {
			break
		}
		delete(iws.unstarted, tile)

		// Move popped tile to currently processed tiles
		iws.inProcess[tile] = struct{}{}
		return tile, true
	}

	// If there is no unstarted tile, we work again on a started one
	if len(iws.inProcess) > 0 {
		for tile = range iws.inProcess {
			break
		}

		return tile, true
	}

	return image.Rectangle{}, false
}

// GetImage implements julia.ImgProvider.
// It blocks until every tile is rendered and returns the encoded bitmap.
func (iws *imgWorkScheduler) GetImage() ([]byte, error) {
	<-iws.ctx.Done()
	iws.m.Lock()
	defer iws.m.Unlock()
	return iws.bitmap, iws.err
}

// Done is closed once the bitmap is ready.
func (iws *imgWorkScheduler) Done() <-chan struct{} {
	return iws.ctx.Done()
}

// progress is the state reported to clients.
type progress struct {
	Finished  float32 `json:"finished"`
	Workers   int     `json:"workers"`
	Tiles     int     `json:"tiles"`
	TilesDone int     `json:"tilesDone"`
	Done      bool    `json:"done"`
}

func (iws *imgWorkScheduler) progress() progress {
	iws.m.Lock()
	defer iws.m.Unlock()
	return progress{
		Finished:  float32(iws.finishedPixels) / float32(iws.totalPixels),
		Workers:   iws.workers,
		Tiles:     iws.totalTiles,
		TilesDone: len(iws.finished),
		Done:      iws.ctx.Err() != nil,
	}
}

func (iws *imgWorkScheduler) tileFinished(tile julia.Tile) {
	rect := tile.Rect
	iws.m.Lock()
	defer iws.m.Unlock()

	// a tile handed out twice is only counted once
	if _, found := iws.inProcess[rect]; !found {
		return
	}
	delete(iws.inProcess, rect)
	iws.finished[rect] = struct{}{}
	iws.result.Accumulate(tile)
	iws.finishedPixels += rect.Dx() * rect.Dy()

	if len(iws.unstarted) == 0 && len(iws.inProcess) == 0 {
		iws.bitmap, iws.err = iws.encode()
		iws.ctxCancel()
	}
}

// encode colors the finished grid. Called with iws.m held.
func (iws *imgWorkScheduler) encode() ([]byte, error) {
	rgb := julia.ColorizeWorkers(iws.result, iws.scheme, iws.params.Workers)
	var buf bytes.Buffer
	buf.Grow(bmp.FileSize(iws.params.Size, iws.params.Size))
	if err := bmp.Encode(&buf, iws.params.Size, iws.params.Size, rgb); err != nil {
		return nil, fmt.Errorf("bmp.Encode: %w", err)
	}
	log.Printf("render finished: observed max %d, bounded pixels %d", iws.result.ObservedMax, iws.result.Bounded)
	return buf.Bytes(), nil
}

func (iws *imgWorkScheduler) incActiveWorker() {
	iws.m.Lock()
	iws.workers++
	w := iws.workers
	iws.m.Unlock()

	log.Printf("workers: %d", w)
}

func (iws *imgWorkScheduler) decActiveWorkers() {
	iws.m.Lock()
	iws.workers--
	w := iws.workers
	iws.m.Unlock()

	log.Printf("workers: %d", w)
}

// renders unfinished tiles on provided Renderer
// can be called from multiple goroutines in parallel
func (iws *imgWorkScheduler) render(renderer julia.Renderer) error {
	iws.incActiveWorker()
	defer iws.decActiveWorkers()

	for {
		tile, found := iws.popTile()
		if !found {
			break
		}
		t, err := renderer.RenderTile(iws.params, tile)
		if err != nil {
			return fmt.Errorf("render of tile %s: %w", tile, err)
		}
		iws.tileFinished(t)
	}
	return nil
}

// localRenderer renders tiles on this machine.
type localRenderer struct{}

func (localRenderer) RenderTile(p julia.Params, tile image.Rectangle) (julia.Tile, error) {
	return julia.ComputeTile(p, tile), nil
}

var _ julia.Renderer = localRenderer{}

// start runs n workers rendering on r until the image is complete.
func (iws *imgWorkScheduler) start(n int, r julia.Renderer) {
	for range n {
		go func() {
			if err := iws.render(r); err != nil {
				log.Printf("worker: %v", err)
			}
		}()
	}
}
