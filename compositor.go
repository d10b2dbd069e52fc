package fontatlas

import (
	"fmt"
	"image"

	"github.com/gogpu/fontatlas/internal/parallel"
)

// OversizePolicy decides what happens to a bitmap larger than the slot interior.
type OversizePolicy int

const (
	// OversizeClip keeps the top-left S x S part of the bitmap and marks
	// the record as clipped.
	OversizeClip OversizePolicy = iota

	// OversizeFail rejects the whole atlas with a GlyphTooLargeError.
	OversizeFail
)

// String returns the flag spelling of the policy.
func (p OversizePolicy) String() string {
	switch p {
	case OversizeClip:
		return "clip"
	case OversizeFail:
		return "fail"
	default:
		return fmt.Sprintf("OversizePolicy(%d)", int(p))
	}
}

// ParseOversizePolicy parses "clip" or "fail".
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch s {
	case "clip":
		return OversizeClip, nil
	case "fail":
		return OversizeFail, nil
	}
	return 0, fmt.Errorf("fontatlas: unknown oversize policy %q", s)
}

// Compositor writes glyph bitmaps into their slots of a canvas.
type Compositor struct {
	layout  Layout
	canvas  *Canvas
	policy  OversizePolicy
	workers int
}

// NewCompositor returns a compositor for the given layout and canvas.
// The canvas must have the layout's dimensions.
func NewCompositor(layout Layout, canvas *Canvas, policy OversizePolicy, workers int) *Compositor {
	return &Compositor{
		layout:  layout,
		canvas:  canvas,
		policy:  policy,
		workers: workers,
	}
}

// Composite places glyphs[i] into slot i, in row-major order, and returns
// one record per glyph in the same order. The glyphs must already be sorted
// by codepoint.
//
// Under OversizeFail every glyph is checked before the canvas is touched.
// Slots are disjoint, so bands of glyphs are composited concurrently
// without locking.
func (c *Compositor) Composite(glyphs []Glyph) ([]GlyphRecord, error) {
	if len(glyphs) > c.layout.Capacity() {
		return nil, fmt.Errorf("fontatlas: %d glyphs do not fit %d slots", len(glyphs), c.layout.Capacity())
	}
	if c.canvas.Bounds() != c.layout.Bounds() {
		return nil, fmt.Errorf("fontatlas: canvas %v does not match layout %v", c.canvas.Bounds(), c.layout.Bounds())
	}

	if c.policy == OversizeFail {
		limit := c.layout.SlotGlyphSize
		for _, g := range glyphs {
			if w, h := g.Size(); w > limit || h > limit {
				return nil, &GlyphTooLargeError{Codepoint: g.Codepoint, Width: w, Height: h, Limit: limit}
			}
		}
	}

	records := make([]GlyphRecord, len(glyphs))
	parallel.ForEachBand(c.workers, len(glyphs), func(b parallel.Band) {
		for i := b.Start; i < b.End; i++ {
			records[i] = c.place(i, glyphs[i])
		}
	})

	// Unused slots are cleared too, so the canvas never carries stale data.
	for i := len(glyphs); i < c.layout.Capacity(); i++ {
		c.canvas.clear(c.layout.SlotRect(i))
	}

	log := Logger()
	for _, r := range records {
		if r.Clipped {
			log.Warn("fontatlas: glyph clipped to slot interior",
				CodepointAttr(r.Codepoint), "limit", c.layout.SlotGlyphSize)
		}
	}
	return records, nil
}

// place composites glyph g into slot i. It writes only inside SlotRect(i).
func (c *Compositor) place(i int, g Glyph) GlyphRecord {
	slot := c.layout.SlotRect(i)
	interior := c.layout.InteriorRect(i)

	c.canvas.clear(slot)

	w, h := g.Size()
	limit := c.layout.SlotGlyphSize
	clipped := w > limit || h > limit
	w, h = min(w, limit), min(h, limit)

	if w > 0 && h > 0 {
		c.canvas.copyFrom(interior.Min, g.Bitmap, g.Bitmap.Rect.Min, w, h)
	}

	Logger().Debug("fontatlas: glyph placed",
		CodepointAttr(g.Codepoint), "slot", i, "x", slot.Min.X, "y", slot.Min.Y)

	return GlyphRecord{
		Codepoint: g.Codepoint,
		Slot:      slot,
		Box:       image.Rectangle{Min: interior.Min, Max: interior.Min.Add(image.Pt(w, h))},
		BearingX:  g.Metrics.BearingX,
		BearingY:  g.Metrics.BearingY,
		Advance:   g.Metrics.Advance,
		Clipped:   clipped,
	}
}
