package typeface

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fontatlas"
)

// ximageParser implements FontParser using golang.org/x/image/font/opentype.
type ximageParser struct{}

// Parse implements FontParser.Parse.
func (ximageParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to parse font: %w", err)
	}
	return &ximageParsedFont{font: f}, nil
}

// ximageParsedFont implements ParsedFont using sfnt.Font.
type ximageParsedFont struct {
	font *opentype.Font
}

func (f *ximageParsedFont) Name() string     { return sfntName(f.font, sfnt.NameIDFamily) }
func (f *ximageParsedFont) FullName() string { return sfntName(f.font, sfnt.NameIDFull) }
func (f *ximageParsedFont) NumGlyphs() int   { return f.font.NumGlyphs() }

func (f *ximageParsedFont) HasGlyph(r rune) bool {
	idx, err := f.font.GlyphIndex(nil, r)
	return err == nil && idx != 0
}

func (f *ximageParsedFont) Metrics(pixelSize int) fontatlas.FontInfo {
	m, err := f.font.Metrics(nil, fixed.I(pixelSize), font.HintingNone)
	if err != nil {
		return fontatlas.FontInfo{PixelSize: pixelSize}
	}
	// x/image reports descent as a positive distance below the baseline.
	return fontatlas.FontInfo{
		PixelSize: pixelSize,
		Ascent:    m.Ascent.Round(),
		Descent:   -m.Descent.Round(),
		LineGap:   (m.Height - m.Ascent - m.Descent).Round(),
	}
}

func (f *ximageParsedFont) NewRasterizer(pixelSize int) (Rasterizer, error) {
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(pixelSize),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to create face: %w", err)
	}
	return &ximageRasterizer{parsed: f, face: face}, nil
}

// ximageRasterizer wraps an opentype face, which reuses its mask buffer
// between calls and so cannot be shared.
type ximageRasterizer struct {
	parsed *ximageParsedFont
	face   font.Face
}

func (z *ximageRasterizer) Rasterize(r rune) (fontatlas.Glyph, bool, error) {
	if !z.parsed.HasGlyph(r) {
		return fontatlas.Glyph{}, false, nil
	}
	dr, mask, maskp, advance, ok := z.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return fontatlas.Glyph{}, false, fmt.Errorf("typeface: failed to rasterize %U", r)
	}

	g := fontatlas.Glyph{
		Codepoint: r,
		Metrics: fontatlas.GlyphMetrics{
			BearingX: dr.Min.X,
			BearingY: -dr.Min.Y,
			Advance:  advance.Round(),
		},
	}
	if !dr.Empty() {
		bitmap := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
		draw.Draw(bitmap, bitmap.Bounds(), mask, maskp, draw.Src)
		g.Bitmap = bitmap
	}
	return g, true, nil
}

func (z *ximageRasterizer) Close() error {
	return z.face.Close()
}

// sfntName returns a name table entry, or "" if the font has none.
func sfntName(f *sfnt.Font, id sfnt.NameID) string {
	name, err := f.Name(nil, id)
	if err != nil {
		return ""
	}
	return name
}
