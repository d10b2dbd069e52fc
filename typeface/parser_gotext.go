package typeface

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"

	"github.com/gogpu/fontatlas"
)

// gotextParser implements FontParser with go-text/typesetting outlines,
// filled by golang.org/x/image/vector.
type gotextParser struct{}

// Parse implements FontParser.Parse.
func (gotextParser) Parse(data []byte) (ParsedFont, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to parse font: %w", err)
	}
	// go-text does not expose the name table, so names come from sfnt.
	names, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to parse font names: %w", err)
	}
	return &gotextParsedFont{font: face.Font, names: names}, nil
}

// gotextParsedFont holds the read-only go-text Font. Faces are created per
// rasterizer because font.Face is not safe for concurrent use.
type gotextParsedFont struct {
	font  *font.Font
	names *sfnt.Font
}

func (f *gotextParsedFont) Name() string     { return sfntName(f.names, sfnt.NameIDFamily) }
func (f *gotextParsedFont) FullName() string { return sfntName(f.names, sfnt.NameIDFull) }
func (f *gotextParsedFont) NumGlyphs() int   { return f.names.NumGlyphs() }

func (f *gotextParsedFont) HasGlyph(r rune) bool {
	_, ok := f.font.NominalGlyph(r)
	return ok
}

func (f *gotextParsedFont) scale(pixelSize int) float32 {
	return float32(pixelSize) / float32(f.font.Upem())
}

func (f *gotextParsedFont) Metrics(pixelSize int) fontatlas.FontInfo {
	info := fontatlas.FontInfo{PixelSize: pixelSize}
	ext, ok := font.NewFace(f.font).FontHExtents()
	if !ok {
		return info
	}
	s := f.scale(pixelSize)
	info.Ascent = round(ext.Ascender * s)
	info.Descent = round(ext.Descender * s)
	info.LineGap = round(ext.LineGap * s)
	return info
}

func (f *gotextParsedFont) NewRasterizer(pixelSize int) (Rasterizer, error) {
	if f.font.Upem() == 0 {
		return nil, fmt.Errorf("typeface: font has zero units per em")
	}
	return &gotextRasterizer{
		face:  font.NewFace(f.font),
		scale: f.scale(pixelSize),
	}, nil
}

type gotextRasterizer struct {
	face  *font.Face
	scale float32
	z     vector.Rasterizer
}

func (z *gotextRasterizer) Rasterize(r rune) (fontatlas.Glyph, bool, error) {
	gid, ok := z.face.NominalGlyph(r)
	if !ok {
		return fontatlas.Glyph{}, false, nil
	}
	outline, ok := z.face.GlyphData(gid).(font.GlyphOutline)
	if !ok {
		// Bitmap and SVG glyphs are not rasterized.
		return fontatlas.Glyph{}, false, nil
	}

	g := fontatlas.Glyph{
		Codepoint: r,
		Metrics: fontatlas.GlyphMetrics{
			Advance: round(z.face.HorizontalAdvance(gid) * z.scale),
		},
	}

	bounds := z.bounds(outline.Segments)
	if bounds.Empty() {
		return g, true, nil
	}
	g.Metrics.BearingX = bounds.Min.X
	g.Metrics.BearingY = -bounds.Min.Y

	w, h := bounds.Dx(), bounds.Dy()
	z.z.Reset(w, h)
	z.z.DrawOp = draw.Src
	dx, dy := float32(-bounds.Min.X), float32(-bounds.Min.Y)
	pt := func(p ot.SegmentPoint) (float32, float32) {
		return p.X*z.scale + dx, -p.Y*z.scale + dy
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			z.z.MoveTo(pt(seg.Args[0]))
		case ot.SegmentOpLineTo:
			z.z.LineTo(pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.z.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			z.z.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	z.z.ClosePath()

	bitmap := image.NewAlpha(image.Rect(0, 0, w, h))
	z.z.Draw(bitmap, bitmap.Bounds(), image.Opaque, image.Point{})
	g.Bitmap = bitmap
	return g, true, nil
}

// bounds returns the pixel box of the outline in y-down coordinates.
// Control points are included, so the box may be slightly loose.
func (z *gotextRasterizer) bounds(segs []ot.Segment) image.Rectangle {
	if len(segs) == 0 {
		return image.Rectangle{}
	}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range segs {
		n := 1
		switch seg.Op {
		case ot.SegmentOpQuadTo:
			n = 2
		case ot.SegmentOpCubeTo:
			n = 3
		}
		for _, p := range seg.Args[:n] {
			x, y := p.X*z.scale, -p.Y*z.scale
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	return image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
}

func (z *gotextRasterizer) Close() error {
	z.face = nil
	return nil
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
