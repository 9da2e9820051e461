package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one terminal cell
type Cell struct {
	Rune  rune
	Style tcell.Style
}

var emptyCell = Cell{Rune: ' ', Style: style(ColorBackground)}

// Buffer is a frame-sized cell array flushed to the screen in one pass
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts dimensions and reallocates only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = emptyCell
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set writes one cell; out of bounds writes are dropped
func (b *Buffer) Set(x, y int, r rune, st tcell.Style) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Style: st}
}

// Get returns the cell at (x, y), or an empty cell when out of bounds
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return emptyCell
	}
	return b.cells[y*b.width+x]
}

// Text writes s from (x, y) clipped to the row and returns the columns used
func (b *Buffer) Text(x, y int, s string, st tcell.Style) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.Set(col, y, r, st)
		col += w
	}
	return col - x
}

// Row returns the runes of row y as a string, for tests and screenshots
func (b *Buffer) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	rs := make([]rune, b.width)
	for x := range rs {
		rs[x] = b.cells[y*b.width+x].Rune
	}
	return string(rs)
}

// Flush copies the buffer into screen; the caller shows it
func (b *Buffer) Flush(screen tcell.Screen) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[y*b.width+x]
			screen.SetContent(x, y, c.Rune, nil, c.Style)
		}
	}
}
