package fontatlas

import "image"

// Canvas is the single-channel pixel buffer of an atlas.
//
// Only the compositor writes to a Canvas. Encoders read it through Image
// and must not modify the returned buffer.
type Canvas struct {
	img *image.Alpha
}

// NewCanvas allocates a zero-filled canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewAlpha(image.Rect(0, 0, width, height))}
}

// Bounds returns the canvas rectangle. Its origin is always (0, 0).
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Rect
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// AlphaAt returns the sample at (x, y), or 0 outside the canvas.
func (c *Canvas) AlphaAt(x, y int) uint8 {
	return c.img.AlphaAt(x, y).A
}

// Image returns the backing image. The caller must treat it as read-only.
func (c *Canvas) Image() *image.Alpha {
	return c.img
}

// clear zeroes every sample inside r.
func (c *Canvas) clear(r image.Rectangle) {
	r = r.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.img.Pix[c.img.PixOffset(r.Min.X, y):c.img.PixOffset(r.Max.X, y)]
		clear(row)
	}
}

// copyFrom copies the w x h block of src starting at sp to dst in
// canvas coordinates. The block must lie inside both images.
func (c *Canvas) copyFrom(dst image.Point, src *image.Alpha, sp image.Point, w, h int) {
	for y := 0; y < h; y++ {
		s := src.PixOffset(sp.X, sp.Y+y)
		d := c.img.PixOffset(dst.X, dst.Y+y)
		copy(c.img.Pix[d:d+w], src.Pix[s:s+w])
	}
}
