package julia

import (
	"fmt"
	"image"
)

// Grid holds one iteration count per pixel of a square image.
// Cells are stored row after row: row y holds pixels (0..size-1, y).
type Grid struct {
	size   int
	budget int
	cells  []int
}

// NewGrid allocates a size x size grid for counts up to budget.
func NewGrid(size, budget int) *Grid {
	if size <= 0 {
		panic(fmt.Sprintf("julia: grid size %d", size))
	}
	return &Grid{
		size:   size,
		budget: budget,
		cells:  make([]int, size*size),
	}
}

func (g *Grid) Size() int { return g.size }

// Budget is the iteration budget the counts were computed with.
// A cell equal to Budget never escaped.
func (g *Grid) Budget() int { return g.budget }

func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.size, g.size)
}

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.size || y < 0 || y >= g.size {
		panic(fmt.Sprintf("julia: grid index (%d, %d) out of range [0, %d)", x, y, g.size))
	}
	return y*g.size + x
}

func (g *Grid) At(x, y int) int {
	return g.cells[g.index(x, y)]
}

func (g *Grid) Set(x, y, count int) {
	g.cells[g.index(x, y)] = count
}

// Bounded reports whether pixel (x, y) stayed within the escape radius
// for the whole budget.
func (g *Grid) Bounded(x, y int) bool {
	return g.At(x, y) >= g.budget
}

// Row returns the cells of row y. The slice aliases the grid.
func (g *Grid) Row(y int) []int {
	start := g.index(0, y)
	return g.cells[start : start+g.size]
}

// Len is the number of cells, size*size.
func (g *Grid) Len() int { return len(g.cells) }

// Draw copies the counts of t into g at the tile's position.
func (g *Grid) Draw(t Tile) {
	w := t.Rect.Dx()
	for y := t.Rect.Min.Y; y < t.Rect.Max.Y; y++ {
		src := t.Counts[(y-t.Rect.Min.Y)*w : (y-t.Rect.Min.Y+1)*w]
		dst := g.Row(y)[t.Rect.Min.X:t.Rect.Max.X]
		copy(dst, src)
	}
}
