package bmfa

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/fontatlas"
)

// Unmarshal parses BMFA data.
//
// The header's grid is checked against the layout that would be planned for
// the same glyph count, slot glyph size and padding, so a decoded Layout is
// always one that PlanLayout can produce.
func Unmarshal(data []byte) (*Metadata, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		if len(data) < len(Magic) {
			return nil, ErrTruncated
		}
		return nil, ErrBadMagic
	}
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}

	if err := checkSizes(data); err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	headerFlags := le.Uint16(data[10:])

	width := int(le.Uint32(data[12:]))
	height := int(le.Uint32(data[16:]))
	columns := int(le.Uint16(data[20:]))
	rows := int(le.Uint16(data[22:]))
	slotGlyphSize := int(le.Uint16(data[24:]))
	padding := int(le.Uint16(data[26:]))
	count := le.Uint32(data[28:])

	font := fontatlas.FontInfo{
		PixelSize: int(le.Uint16(data[32:])),
		Ascent:    int(int16(le.Uint16(data[34:]))),
		Descent:   int(int16(le.Uint16(data[36:]))),
		LineGap:   int(int16(le.Uint16(data[38:]))),
	}

	switch size := uint64(count) * RecordSize; {
	case uint64(len(data)-HeaderSize) < size:
		return nil, ErrTruncated
	case uint64(len(data)-HeaderSize) > size:
		return nil, &InconsistentHeaderError{Reason: fmt.Sprintf(
			"%d bytes after %d records", uint64(len(data)-HeaderSize)-size, count)}
	}

	layout, err := fontatlas.PlanLayout(int(count), slotGlyphSize, padding)
	if err != nil {
		return nil, &InconsistentHeaderError{Reason: err.Error()}
	}
	if layout.Columns != columns || layout.Rows != rows || layout.Width != width || layout.Height != height {
		return nil, &InconsistentHeaderError{Reason: fmt.Sprintf(
			"grid %dx%d (%dx%d px) does not match %d glyphs of slot size %d",
			columns, rows, width, height, count, layout.SlotSize)}
	}

	records := make([]fontatlas.GlyphRecord, count)
	clipped := false
	for i := range records {
		off := HeaderSize + i*RecordSize
		r := decodeRecord(data[off : off+RecordSize])
		if r.Slot != layout.SlotRect(i) {
			return nil, &InconsistentHeaderError{Reason: fmt.Sprintf(
				"record %d has slot %v, want %v", i, r.Slot, layout.SlotRect(i))}
		}
		if !r.Box.In(layout.InteriorRect(i)) {
			return nil, &InconsistentHeaderError{Reason: fmt.Sprintf(
				"record %d box %v outside slot interior", i, r.Box)}
		}
		clipped = clipped || r.Clipped
		records[i] = r
	}
	if clipped != (headerFlags&headerFlagClipped != 0) {
		return nil, &InconsistentHeaderError{Reason: "clipped flag disagrees with records"}
	}

	table, err := fontatlas.NewTable(records)
	if err != nil {
		return nil, err
	}
	return &Metadata{Layout: layout, Font: font, Table: table}, nil
}

// Decode reads one BMFA file from r. It reads the header, then exactly the
// number of records the header announces, and leaves anything after them
// unread.
func Decode(r io.Reader) (*Metadata, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Unmarshal(header[:n])
	case err != nil:
		return nil, err
	}
	if string(header[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	if err := checkSizes(header); err != nil {
		return nil, err
	}

	// The buffer grows with the data actually read, so a corrupt count
	// cannot force a large allocation.
	var buf bytes.Buffer
	buf.Write(header)
	size := int64(binary.LittleEndian.Uint32(header[28:])) * RecordSize
	if _, err := io.CopyN(&buf, r, size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return Unmarshal(buf.Bytes())
}

// checkSizes validates the version and the header and record sizes of a
// complete header.
func checkSizes(header []byte) error {
	le := binary.LittleEndian
	if v := le.Uint16(header[4:]); v != Version {
		return &UnsupportedVersionError{Version: v}
	}
	if hs := le.Uint16(header[6:]); hs != HeaderSize {
		return &InconsistentHeaderError{Reason: fmt.Sprintf("header size %d", hs)}
	}
	if rs := le.Uint16(header[8:]); rs != RecordSize {
		return &InconsistentHeaderError{Reason: fmt.Sprintf("record size %d", rs)}
	}
	return nil
}

func decodeRecord(b []byte) fontatlas.GlyphRecord {
	le := binary.LittleEndian
	slotMin := image.Pt(int(le.Uint32(b[4:])), int(le.Uint32(b[8:])))
	slot := image.Rectangle{Min: slotMin, Max: slotMin.Add(image.Pt(int(le.Uint16(b[12:])), int(le.Uint16(b[14:]))))}
	boxMin := slotMin.Add(image.Pt(int(le.Uint16(b[16:])), int(le.Uint16(b[18:]))))
	box := image.Rectangle{Min: boxMin, Max: boxMin.Add(image.Pt(int(le.Uint16(b[20:])), int(le.Uint16(b[22:]))))}

	return fontatlas.GlyphRecord{
		Codepoint: rune(le.Uint32(b[0:])),
		Slot:      slot,
		Box:       box,
		BearingX:  int(int16(le.Uint16(b[24:]))),
		BearingY:  int(int16(le.Uint16(b[26:]))),
		Advance:   int(int16(le.Uint16(b[28:]))),
		Clipped:   le.Uint16(b[30:])&recordFlagClipped != 0,
	}
}
