package bmfa

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogpu/fontatlas"
)

type jsonAtlas struct {
	Version       int         `json:"version"`
	Font          string      `json:"font,omitempty"`
	PixelSize     int         `json:"pixel_size"`
	Ascent        int         `json:"ascent"`
	Descent       int         `json:"descent"`
	LineGap       int         `json:"line_gap"`
	LineHeight    int         `json:"line_height"`
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	Columns       int         `json:"columns"`
	Rows          int         `json:"rows"`
	SlotGlyphSize int         `json:"slot_glyph_size"`
	Padding       int         `json:"padding"`
	Glyphs        []jsonGlyph `json:"glyphs"`
}

type jsonGlyph struct {
	Codepoint string  `json:"codepoint"`
	Char      string  `json:"char"`
	SlotX     int     `json:"slot_x"`
	SlotY     int     `json:"slot_y"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	W         int     `json:"w"`
	H         int     `json:"h"`
	U0        float64 `json:"u0"`
	V0        float64 `json:"v0"`
	U1        float64 `json:"u1"`
	V1        float64 `json:"v1"`
	BearingX  int     `json:"bearing_x"`
	BearingY  int     `json:"bearing_y"`
	Advance   int     `json:"advance"`
	Clipped   bool    `json:"clipped,omitempty"`
}

// EncodeJSON writes a human-readable sidecar describing the atlas.
//
// Box coordinates are absolute canvas pixels; u0, v0, u1 and v1 are the same
// box normalized to the canvas size.
func EncodeJSON(w io.Writer, a *fontatlas.Atlas) error {
	if a == nil || a.Table == nil {
		return fmt.Errorf("bmfa: nil atlas")
	}
	l := a.Layout
	doc := jsonAtlas{
		Version:       Version,
		Font:          a.Font.Name,
		PixelSize:     a.Font.PixelSize,
		Ascent:        a.Font.Ascent,
		Descent:       a.Font.Descent,
		LineGap:       a.Font.LineGap,
		LineHeight:    a.Font.LineHeight(),
		Width:         l.Width,
		Height:        l.Height,
		Columns:       l.Columns,
		Rows:          l.Rows,
		SlotGlyphSize: l.SlotGlyphSize,
		Padding:       l.Padding,
		Glyphs:        make([]jsonGlyph, 0, a.Table.Len()),
	}
	fw, fh := float64(l.Width), float64(l.Height)
	for _, r := range a.Table.All() {
		doc.Glyphs = append(doc.Glyphs, jsonGlyph{
			Codepoint: fmt.Sprintf("%U", r.Codepoint),
			Char:      string(r.Codepoint),
			SlotX:     r.Slot.Min.X,
			SlotY:     r.Slot.Min.Y,
			X:         r.Box.Min.X,
			Y:         r.Box.Min.Y,
			W:         r.Box.Dx(),
			H:         r.Box.Dy(),
			U0:        float64(r.Box.Min.X) / fw,
			V0:        float64(r.Box.Min.Y) / fh,
			U1:        float64(r.Box.Max.X) / fw,
			V1:        float64(r.Box.Max.Y) / fh,
			BearingX:  r.BearingX,
			BearingY:  r.BearingY,
			Advance:   r.Advance,
			Clipped:   r.Clipped,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
