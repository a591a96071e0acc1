package julia

import (
	"errors"
	"fmt"
	"sync"
)

var ErrColorRange = errors.New("color index out of range")

// colorBias keeps the largest count just below colorMax-1 after scaling.
const colorBias = 0.01

// ColorIndex scales an iteration count in [0, observedMax] to a color index
// in [0, colorMax-1]. The conversion truncates toward zero.
//
// An index outside that range means the caller broke the count contract and
// ColorIndex panics with an error wrapping ErrColorRange.
func ColorIndex(count, observedMax, colorMax int) int {
	part := float64(colorMax-1) / float64(observedMax)
	idx := int(float64(count)*part - colorBias)
	if idx < 0 || idx >= colorMax {
		panic(fmt.Errorf("%w: count %d observed max %d gives %d, want [0, %d)",
			ErrColorRange, count, observedMax, idx, colorMax))
	}
	return idx
}

// gatherChannel collects every third bit of idx starting at bit k:
// bit 3j+k of idx becomes bit j of the result.
func gatherChannel(idx uint32, k uint) uint8 {
	var out uint8
	for j := uint(0); j < 8; j++ {
		bit := (idx >> (3*j + k)) & 1
		out |= uint8(bit << j)
	}
	return out
}

// multiTable[b][v] holds the bits byte b of an index with value v adds to
// each channel, packed as r | g<<8 | b<<16.
var multiTable = sync.OnceValue(func() *[3][256]uint32 {
	var t [3][256]uint32
	for b := range 3 {
		for v := range 256 {
			idx := uint32(v) << (8 * b)
			t[b][v] = uint32(gatherChannel(idx, 0)) |
				uint32(gatherChannel(idx, 1))<<8 |
				uint32(gatherChannel(idx, 2))<<16
		}
	}
	return &t
})

// MultiColor turns a 24-bit color index into a pixel by interleaving:
// red gets index bits 0, 3, 6, ..., green bits 1, 4, 7, ... and blue bits
// 2, 5, 8, .... Growing indices walk through a rainbow-like gradient.
func MultiColor(idx int) (r, g, b uint8) {
	t := multiTable()
	v := t[0][idx&0xff] | t[1][(idx>>8)&0xff] | t[2][(idx>>16)&0xff]
	return uint8(v), uint8(v >> 8), uint8(v >> 16)
}

// pixelFunc writes the color of one count into px (R, G, B).
type pixelFunc func(px []byte, count int)

func pixelColorer(observedMax, budget int, s Scheme) pixelFunc {
	colorMax := s.ColorMax()
	if s.SingleColor() {
		ch := s.Channels()
		return func(px []byte, count int) {
			if count >= budget {
				px[0], px[1], px[2] = 0, 0, 0
				return
			}
			v := uint8(ColorIndex(count, observedMax, colorMax))
			for i, on := range ch {
				if on {
					px[i] = v
				} else {
					px[i] = 0
				}
			}
		}
	}
	return func(px []byte, count int) {
		if count >= budget {
			px[0], px[1], px[2] = 0, 0, 0
			return
		}
		px[0], px[1], px[2] = MultiColor(ColorIndex(count, observedMax, colorMax))
	}
}

// Colorize maps every cell of the result to an RGB triple using scheme s.
// The returned buffer holds 3 bytes per pixel, rows top to bottom.
// Pixels that never escaped are black.
func Colorize(res Result, s Scheme) []byte {
	return ColorizeWorkers(res, s, 1)
}

// ColorizeWorkers is Colorize spread over up to workers goroutines.
func ColorizeWorkers(res Result, s Scheme, workers int) []byte {
	s = s.Normalize()
	g := res.Grid
	size := g.Size()
	rgb := make([]byte, 3*g.Len())
	color := pixelColorer(max(res.ObservedMax, MinObservedMax), g.Budget(), s)

	rows := func(from, to int) {
		for y := from; y < to; y++ {
			line := rgb[3*y*size : 3*(y+1)*size]
			for x, count := range g.Row(y) {
				color(line[3*x:3*x+3], count)
			}
		}
	}

	workers = min(max(workers, 1), size)
	if workers == 1 {
		rows(0, size)
		return rgb
	}

	var wg sync.WaitGroup
	band := (size + workers - 1) / workers
	for from := 0; from < size; from += band {
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			rows(from, to)
		}(from, min(from+band, size))
	}
	wg.Wait()
	return rgb
}
