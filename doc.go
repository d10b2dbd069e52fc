// Package fontatlas packs rasterized glyphs into a single bitmap atlas
// and describes every glyph's place in it.
//
// The pipeline is a single pass over a known glyph set:
//
//   - PlanLayout picks a grid of equal slots for the glyph count
//   - Compositor copies each bitmap into the interior of its slot
//   - MetadataBuilder collects one GlyphRecord per glyph, by codepoint
//   - Build runs all three and returns an Atlas
//
// Glyph sources live in the typeface package, the binary metadata format
// in bmfa, and the image encoders in imageio.
//
// # Slots
//
// Every slot is D = S + 2P pixels square, where S is the slot glyph size
// and P the padding. A glyph bitmap is anchored at the top-left corner of
// the S x S interior. Padding is never written, so a renderer may sample
// up to P pixels around a glyph without picking up its neighbours.
//
// # Example
//
//	src, err := typeface.NewFontSourceFromFile("FreeMono.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	set, err := typeface.Sample(ctx, src, typeface.Latin1(), typeface.SampleOptions{PixelSize: 48})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	atlas, err := fontatlas.Build(set, fontatlas.Config{SlotGlyphSize: 64, Padding: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = bmfa.Encode(w, atlas)
package fontatlas
