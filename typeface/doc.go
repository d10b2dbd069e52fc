// Package typeface loads TrueType and OpenType fonts and rasterizes
// codepoints into glyph sets for the atlas builder.
//
// Two parser backends are registered: "ximage" (the default) uses
// golang.org/x/image/font/opentype, and "gotext" fills go-text/typesetting
// outlines with golang.org/x/image/vector. Others can be added with
// RegisterParser.
//
//	src, err := typeface.NewFontSourceFromFile("font.ttf", typeface.WithParser("gotext"))
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//
//	runes, err := typeface.ParseCharset("latin1,Greek")
//	if err != nil {
//		return err
//	}
//	set, err := typeface.Sample(ctx, src, runes, typeface.SampleOptions{PixelSize: 32})
package typeface
