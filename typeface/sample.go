package typeface

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/text/unicode/runenames"

	"github.com/gogpu/fontatlas"
	"github.com/gogpu/fontatlas/internal/parallel"
)

// SampleOptions controls glyph sampling.
type SampleOptions struct {
	// PixelSize is the rasterization size in pixels per em.
	PixelSize int

	// Workers is the number of rasterizing goroutines.
	// 0 means GOMAXPROCS, 1 rasterizes on the calling goroutine.
	Workers int
}

// Sample rasterizes codepoints from src into a glyph set.
//
// Codepoints the font has no glyph for are skipped. The glyphs keep the
// order of codepoints. Each worker uses its own Rasterizer. Sample stops
// between glyphs when ctx is cancelled and returns ctx.Err().
func Sample(ctx context.Context, src *FontSource, codepoints []rune, opts SampleOptions) (fontatlas.GlyphSet, error) {
	if opts.PixelSize <= 0 {
		return fontatlas.GlyphSet{}, &fontatlas.InvalidDimensionError{
			Field: "pixel size", Value: opts.PixelSize, Reason: "must be positive"}
	}
	if opts.Workers < 0 {
		return fontatlas.GlyphSet{}, &fontatlas.InvalidDimensionError{
			Field: "workers", Value: opts.Workers, Reason: "must be non-negative"}
	}
	parsed, err := src.Parsed()
	if err != nil {
		return fontatlas.GlyphSet{}, err
	}

	glyphs := make([]fontatlas.Glyph, len(codepoints))
	found := make([]bool, len(codepoints))

	var (
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	parallel.ForEachBand(opts.Workers, len(codepoints), func(b parallel.Band) {
		z, err := parsed.NewRasterizer(opts.PixelSize)
		if err != nil {
			fail(err)
			return
		}
		defer z.Close()
		fontatlas.Logger().Debug("typeface: rasterizing band", "first", b.Start, "glyphs", b.Len())

		for i := b.Start; i < b.End; i++ {
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			g, ok, err := z.Rasterize(codepoints[i])
			if err != nil {
				fail(err)
				return
			}
			glyphs[i], found[i] = g, ok
		}
	})
	if firstErr != nil {
		return fontatlas.GlyphSet{}, firstErr
	}

	log := fontatlas.Logger()
	out := glyphs[:0]
	missing := 0
	for i, g := range glyphs {
		if !found[i] {
			missing++
			log.Debug("typeface: no glyph for codepoint",
				fontatlas.CodepointAttr(codepoints[i]), "name", runenames.Name(codepoints[i]))
			continue
		}
		out = append(out, g)
	}
	if missing > 0 {
		log.Info("typeface: skipped codepoints missing from font",
			"font", src.Name(), "missing", missing, "requested", len(codepoints))
	}
	if len(out) == 0 {
		return fontatlas.GlyphSet{}, fmt.Errorf("typeface: font %q has none of the %d requested codepoints: %w",
			src.Name(), len(codepoints), fontatlas.ErrEmptyGlyphSet)
	}

	info := parsed.Metrics(opts.PixelSize)
	info.Name = src.Name()
	return fontatlas.GlyphSet{FontInfo: info, Glyphs: out}, nil
}
