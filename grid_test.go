package julia

import (
	"image"
	"testing"
)

func TestGridLayout(t *testing.T) {
	g := NewGrid(3, 10)
	g.Set(2, 1, 7)

	if got := g.At(2, 1); got != 7 {
		t.Errorf("At(2, 1) = %d, want 7", got)
	}
	if got := g.cells[1*3+2]; got != 7 {
		t.Errorf("cell 5 = %d, want 7", got)
	}
	if row := g.Row(1); row[2] != 7 || len(row) != 3 {
		t.Errorf("Row(1) = %v", row)
	}
	if g.Len() != 9 {
		t.Errorf("Len = %d, want 9", g.Len())
	}
}

func TestGridBounded(t *testing.T) {
	g := NewGrid(2, 5)
	g.Set(0, 0, 5)
	g.Set(1, 0, 4)
	if !g.Bounded(0, 0) {
		t.Error("cell at budget not bounded")
	}
	if g.Bounded(1, 0) {
		t.Error("cell below budget bounded")
	}
}

func TestGridOutOfRangePanics(t *testing.T) {
	g := NewGrid(4, 1)
	for _, p := range []image.Point{{-1, 0}, {4, 0}, {0, 4}, {0, -1}, {5, 5}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%d, %d) did not panic", p.X, p.Y)
				}
			}()
			g.At(p.X, p.Y)
		}()
	}
}

func TestGridDraw(t *testing.T) {
	g := NewGrid(4, 9)
	g.Draw(Tile{
		Rect:   image.Rect(1, 2, 3, 4),
		Counts: []int{1, 2, 3, 4},
	})

	want := map[image.Point]int{{1, 2}: 1, {2, 2}: 2, {1, 3}: 3, {2, 3}: 4}
	for y := range 4 {
		for x := range 4 {
			if got := g.At(x, y); got != want[image.Pt(x, y)] {
				t.Errorf("At(%d, %d) = %d, want %d", x, y, got, want[image.Pt(x, y)])
			}
		}
	}
}
