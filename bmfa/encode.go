package bmfa

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/fontatlas"
)

// Marshal returns the BMFA encoding of the atlas metadata.
//
// Every value is range-checked against its field width first; the first
// value that does not fit is reported as *fontatlas.EncodingOverflowError.
func Marshal(a *fontatlas.Atlas) ([]byte, error) {
	if a == nil || a.Table == nil {
		return nil, fmt.Errorf("bmfa: nil atlas")
	}
	if a.Canvas != nil && a.Canvas.Bounds() != a.Layout.Bounds() {
		return nil, fmt.Errorf("bmfa: canvas %v does not match layout %v", a.Canvas.Bounds(), a.Layout.Bounds())
	}
	if a.Table.Len() != a.Layout.Glyphs {
		return nil, fmt.Errorf("bmfa: table has %d records, layout has %d glyphs", a.Table.Len(), a.Layout.Glyphs)
	}

	e := encoder{buf: make([]byte, 0, HeaderSize+RecordSize*a.Table.Len())}
	e.header(a)
	for _, r := range a.Table.All() {
		e.record(r)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Encode writes the BMFA encoding of the atlas metadata to w.
// Nothing is written if the encoding fails.
func Encode(w io.Writer, a *fontatlas.Atlas) error {
	data, err := Marshal(a)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// encoder appends fields to buf and keeps the first range error.
type encoder struct {
	buf []byte
	err error
}

func (e *encoder) check(field string, v, lo, hi int64) bool {
	if e.err != nil {
		return false
	}
	if v < lo || v > hi {
		e.err = &fontatlas.EncodingOverflowError{Field: field, Value: v, Max: hi}
		return false
	}
	return true
}

func (e *encoder) u16(field string, v int) {
	if e.check(field, int64(v), 0, math.MaxUint16) {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(v))
	}
}

func (e *encoder) i16(field string, v int) {
	if e.check(field, int64(v), math.MinInt16, math.MaxInt16) {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(int16(v)))
	}
}

func (e *encoder) u32(field string, v int64) {
	if e.check(field, v, 0, math.MaxUint32) {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
	}
}

func (e *encoder) header(a *fontatlas.Atlas) {
	l := a.Layout
	var flags int
	if a.Table.ClippedCount() > 0 {
		flags |= headerFlagClipped
	}

	e.buf = append(e.buf, Magic...)
	e.u16("version", Version)
	e.u16("header size", HeaderSize)
	e.u16("record size", RecordSize)
	e.u16("header flags", flags)
	e.u32("canvas width", int64(l.Width))
	e.u32("canvas height", int64(l.Height))
	e.u16("columns", l.Columns)
	e.u16("rows", l.Rows)
	e.u16("slot glyph size", l.SlotGlyphSize)
	e.u16("padding", l.Padding)
	e.u32("glyph count", int64(a.Table.Len()))
	e.u16("pixel size", a.Font.PixelSize)
	e.i16("ascent", a.Font.Ascent)
	e.i16("descent", a.Font.Descent)
	e.i16("line gap", a.Font.LineGap)

	// Slot width and height are stored per record in 16 bit fields.
	e.check("slot size", int64(l.SlotSize), 0, math.MaxUint16)
}

func (e *encoder) record(r fontatlas.GlyphRecord) {
	var flags int
	if r.Clipped {
		flags |= recordFlagClipped
	}
	box := r.Box.Sub(r.Slot.Min)

	e.u32("codepoint", int64(r.Codepoint))
	e.u32("slot x", int64(r.Slot.Min.X))
	e.u32("slot y", int64(r.Slot.Min.Y))
	e.u16("slot width", r.Slot.Dx())
	e.u16("slot height", r.Slot.Dy())
	e.u16("box x", box.Min.X)
	e.u16("box y", box.Min.Y)
	e.u16("box width", box.Dx())
	e.u16("box height", box.Dy())
	e.i16("bearing x", r.BearingX)
	e.i16("bearing y", r.BearingY)
	e.i16("advance", r.Advance)
	e.u16("record flags", flags)
}
