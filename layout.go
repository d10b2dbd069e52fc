package fontatlas

import (
	"image"
	"math"
)

// MaxCanvasPixels bounds the number of samples in an atlas canvas.
const MaxCanvasPixels = 1 << 30

// Layout is the grid geometry of an atlas.
//
// Every slot has the same size, SlotSize = SlotGlyphSize + 2*Padding, and
// slots are numbered in row-major order. A general rectangle bin-packer
// would waste less canvas area, but the uniform grid gives O(1) slot
// lookup and a layout that depends only on the glyph count.
type Layout struct {
	Glyphs        int // number of glyphs placed
	Columns       int
	Rows          int
	SlotGlyphSize int // interior size S
	Padding       int // padding P on each side of the interior
	SlotSize      int // D = S + 2P
	Width         int // Columns * D
	Height        int // Rows * D
}

// PlanLayout computes the grid for n glyphs.
//
// The grid is as close to square as the uniform slots allow:
// columns = ceil(sqrt(n)) and rows = ceil(n / columns). For n = 4,
// S = 128 and P = 6 this gives a 2x2 grid of 140 pixel slots on a
// 280x280 canvas.
func PlanLayout(n, slotGlyphSize, padding int) (Layout, error) {
	if n <= 0 {
		return Layout{}, ErrEmptyGlyphSet
	}
	if slotGlyphSize <= 0 {
		return Layout{}, &InvalidDimensionError{Field: "slot glyph size", Value: slotGlyphSize, Reason: "must be positive"}
	}
	if padding < 0 {
		return Layout{}, &InvalidDimensionError{Field: "padding", Value: padding, Reason: "must be non-negative"}
	}

	slot := slotGlyphSize + 2*padding
	if slot > MaxCanvasPixels {
		return Layout{}, &InvalidDimensionError{Field: "slot size", Value: slot, Reason: "exceeds maximum canvas size"}
	}

	cols := ceilSqrt(n)
	rows := (n + cols - 1) / cols

	width := int64(cols) * int64(slot)
	height := int64(rows) * int64(slot)
	if width > MaxCanvasPixels || height > MaxCanvasPixels || width*height > MaxCanvasPixels {
		return Layout{}, &InvalidDimensionError{Field: "canvas", Value: int(width), Reason: "exceeds maximum canvas size"}
	}

	return Layout{
		Glyphs:        n,
		Columns:       cols,
		Rows:          rows,
		SlotGlyphSize: slotGlyphSize,
		Padding:       padding,
		SlotSize:      slot,
		Width:         cols * slot,
		Height:        rows * slot,
	}, nil
}

// ceilSqrt returns the smallest c with c*c >= n, for n >= 1.
func ceilSqrt(n int) int {
	c := int(math.Sqrt(float64(n)))
	for c*c < n {
		c++
	}
	for c > 1 && (c-1)*(c-1) >= n {
		c--
	}
	return c
}

// Capacity returns the number of slots in the grid.
func (l Layout) Capacity() int {
	return l.Columns * l.Rows
}

// SlotAt returns the grid position of slot i.
func (l Layout) SlotAt(i int) (row, col int) {
	return i / l.Columns, i % l.Columns
}

// SlotRect returns the canvas rectangle of slot i, padding included.
func (l Layout) SlotRect(i int) image.Rectangle {
	row, col := l.SlotAt(i)
	x := col * l.SlotSize
	y := row * l.SlotSize
	return image.Rect(x, y, x+l.SlotSize, y+l.SlotSize)
}

// InteriorRect returns the S x S glyph area of slot i.
func (l Layout) InteriorRect(i int) image.Rectangle {
	return l.SlotRect(i).Inset(l.Padding)
}

// Bounds returns the canvas rectangle.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// Utilization returns the fraction of slots that hold a glyph.
func (l Layout) Utilization() float64 {
	capacity := l.Capacity()
	if capacity <= 0 {
		return 0
	}
	return float64(l.Glyphs) / float64(capacity)
}
