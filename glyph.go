package fontatlas

import (
	"cmp"
	"image"
	"slices"
)

// GlyphMetrics holds the horizontal layout metrics of one glyph, in pixels.
type GlyphMetrics struct {
	// BearingX is the offset from the pen origin to the left edge of the bitmap.
	BearingX int

	// BearingY is the offset from the baseline up to the top edge of the bitmap.
	BearingY int

	// Advance is how far the pen moves after drawing this glyph.
	Advance int
}

// Glyph is a rasterized glyph as produced by a glyph source.
// A Glyph must not be modified once it has been handed to Build.
type Glyph struct {
	// Codepoint identifies the glyph.
	Codepoint rune

	// Bitmap is the coverage mask. It may be nil or empty for blank
	// glyphs such as the space character. Its rectangle may have any origin.
	Bitmap *image.Alpha

	Metrics GlyphMetrics
}

// Size returns the bitmap width and height, or zero for a blank glyph.
func (g Glyph) Size() (w, h int) {
	if g.Bitmap == nil {
		return 0, 0
	}
	b := g.Bitmap.Bounds()
	return b.Dx(), b.Dy()
}

// FontInfo carries font-level values into the atlas header.
type FontInfo struct {
	Name      string
	PixelSize int
	Ascent    int
	Descent   int
	LineGap   int
}

// LineHeight returns the baseline-to-baseline distance.
func (f FontInfo) LineHeight() int {
	return f.Ascent - f.Descent + f.LineGap
}

// GlyphSet is the output of a glyph source: the glyphs plus the
// font-level information of the face they came from.
type GlyphSet struct {
	FontInfo
	Glyphs []Glyph
}

// prepareGlyphs returns a copy of glyphs sorted by codepoint.
// Duplicate codepoints are rejected here, before any layout or canvas work.
func prepareGlyphs(glyphs []Glyph) ([]Glyph, error) {
	if len(glyphs) == 0 {
		return nil, ErrEmptyGlyphSet
	}

	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b Glyph) int {
		return cmp.Compare(a.Codepoint, b.Codepoint)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Codepoint == sorted[i-1].Codepoint {
			return nil, &DuplicateGlyphError{Codepoint: sorted[i].Codepoint}
		}
	}
	return sorted, nil
}
