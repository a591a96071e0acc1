package julia

import (
	"image"
	"sync"
	"time"
)

// EscapeRadius2 is the squared escape radius. Once |z| > 2 the orbit of
// z -> z² + c diverges for every c in the Julia sets drawn here.
const EscapeRadius2 = 4.0

// MinObservedMax is reported as the observed maximum when no pixel escaped
// or all escaped at index 0, so colors can always be divided by it.
const MinObservedMax = 1

// rowsPerTile is the height of the row tiles Compute hands to its workers.
const rowsPerTile = 16

// Escape iterates z -> z² + c starting at z0 and returns the first index i
// at which |z_i|² > 4, z_i being z0 after i steps. It returns budget when
// the orbit stays inside the radius for the whole budget.
func Escape(z0, c Complex, budget int) int {
	z := z0
	for i := 0; i < budget; i++ {
		if z.Abs2() > EscapeRadius2 {
			return i
		}
		sq := z.Mul(z)
		z = sq.Add(c)
	}
	return budget
}

// Tile is the result of rendering a sub rectangle of the image.
type Tile struct {
	Rect   image.Rectangle
	Counts []int // row-major, Rect.Dx() per row
	Max    int   // largest escape index in the tile, 0 if nothing escaped
	// Bounded is the number of pixels that never escaped.
	Bounded int
}

// ComputeTile runs the escape iteration for every pixel of rect.
func ComputeTile(p Params, rect image.Rectangle) Tile {
	t := Tile{
		Rect:   rect,
		Counts: make([]int, rect.Dx()*rect.Dy()),
	}
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			n := Escape(p.Start(x, y), p.C, p.Budget)
			t.Counts[i] = n
			i++

			if n >= p.Budget {
				t.Bounded++
			} else if n > t.Max {
				t.Max = n
			}
		}
	}
	return t
}

// Result is the output of the iteration engine.
type Result struct {
	Grid *Grid
	// ObservedMax is the largest escape index among pixels that escaped,
	// at least MinObservedMax.
	ObservedMax int
	// Bounded is the number of pixels that never escaped.
	Bounded int
	Elapsed time.Duration
}

// Accumulate folds a finished tile into the result.
func (r *Result) Accumulate(t Tile) {
	r.Grid.Draw(t)
	r.Bounded += t.Bounded
	if t.Max > r.ObservedMax {
		r.ObservedMax = t.Max
	}
}

// NewResult prepares an empty result for the given parameters.
func NewResult(p Params) Result {
	return Result{
		Grid:        NewGrid(p.Size, p.Budget),
		ObservedMax: MinObservedMax,
	}
}

// Compute fills the iteration grid for p. Parameters must be valid.
//
// With more than one worker the image is cut into bands of rows that are
// rendered concurrently; the result does not depend on the worker count.
func Compute(p Params) Result {
	start := time.Now()
	res := NewResult(p)

	tiles := SplitRect(res.Grid.Bounds(), p.Size, rowsPerTile)
	workers := min(max(p.Workers, 1), len(tiles))

	if workers == 1 {
		for _, r := range tiles {
			res.Accumulate(ComputeTile(p, r))
		}
	} else {
		done := make([]Tile, len(tiles))
		next := make(chan int)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range next {
					done[i] = ComputeTile(p, tiles[i])
				}
			}()
		}
		for i := range tiles {
			next <- i
		}
		close(next)
		wg.Wait()

		for _, t := range done {
			res.Accumulate(t)
		}
	}

	res.Elapsed = time.Since(start)
	Logger().Debug("julia set computed",
		"size", p.Size,
		"budget", p.Budget,
		"workers", workers,
		"observed_max", res.ObservedMax,
		"bounded", res.Bounded,
		"elapsed", res.Elapsed)
	return res
}

// SplitRect splits r into tiles of size tileW x tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func SplitRect(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)

		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)

			tile := image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			)
			tiles = append(tiles, tile)
		}
	}

	return tiles
}
