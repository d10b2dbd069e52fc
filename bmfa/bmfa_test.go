package bmfa

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/fontatlas"
)

func glyph(cp rune, w, h int) fontatlas.Glyph {
	img := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i*7 + int(cp))
	}
	return fontatlas.Glyph{
		Codepoint: cp,
		Bitmap:    img,
		Metrics:   fontatlas.GlyphMetrics{BearingX: -1, BearingY: h - 2, Advance: w + 1},
	}
}

func testAtlas(t *testing.T) *fontatlas.Atlas {
	t.Helper()
	set := fontatlas.GlyphSet{
		FontInfo: fontatlas.FontInfo{Name: "Test Sans", PixelSize: 16, Ascent: 13, Descent: -4, LineGap: 1},
		Glyphs: []fontatlas.Glyph{
			glyph('A', 10, 12),
			glyph(' ', 0, 0),
			glyph('g', 9, 14),
			glyph('W', 20, 12), // wider than the interior
			glyph(0x00E9, 8, 13),
		},
	}
	cfg := fontatlas.Config{SlotGlyphSize: 16, Padding: 2, Workers: 1}
	a, err := fontatlas.Build(set, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func TestMarshal_Sizes(t *testing.T) {
	a := testAtlas(t)
	data, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := HeaderSize + RecordSize*5; len(data) != want {
		t.Fatalf("len = %d, want %d", len(data), want)
	}
	if string(data[:4]) != Magic {
		t.Errorf("magic = %q", data[:4])
	}
	le := binary.LittleEndian
	if got := le.Uint16(data[10:]); got&headerFlagClipped == 0 {
		t.Errorf("header flags = %#x, want clipped bit", got)
	}
	if got := le.Uint32(data[12:]); got != 60 {
		t.Errorf("width = %d, want 60", got)
	}
	if got := le.Uint32(data[28:]); got != 5 {
		t.Errorf("glyph count = %d, want 5", got)
	}
	if got := int16(le.Uint16(data[36:])); got != -4 {
		t.Errorf("descent = %d, want -4", got)
	}
	// First record is the space, the lowest codepoint.
	if got := le.Uint32(data[HeaderSize:]); got != ' ' {
		t.Errorf("first codepoint = %U", got)
	}
	// Box offset is relative to the slot, i.e. equal to the padding.
	if x, y := le.Uint16(data[HeaderSize+16:]), le.Uint16(data[HeaderSize+18:]); x != 2 || y != 2 {
		t.Errorf("box offset = (%d, %d), want (2, 2)", x, y)
	}
}

func TestRoundTrip(t *testing.T) {
	a := testAtlas(t)
	var buf bytes.Buffer
	if err := Encode(&buf, a); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	md, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(a.Layout, md.Layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	wantFont := a.Font
	wantFont.Name = "" // not stored in the binary format
	if diff := cmp.Diff(wantFont, md.Font); diff != "" {
		t.Errorf("font mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(a.Table.Records(), md.Table.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if md.Table.ClippedCount() != 1 {
		t.Errorf("ClippedCount = %d, want 1", md.Table.ClippedCount())
	}
}

func TestMarshal_Overflow(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(a *fontatlas.Atlas)
		field string
	}{
		{
			name:  "bearing",
			edit:  func(a *fontatlas.Atlas) { setRecord(a, 0, func(r *fontatlas.GlyphRecord) { r.BearingX = 40000 }) },
			field: "bearing x",
		},
		{
			name:  "negative advance",
			edit:  func(a *fontatlas.Atlas) { setRecord(a, 2, func(r *fontatlas.GlyphRecord) { r.Advance = -40000 }) },
			field: "advance",
		},
		{
			name:  "ascent",
			edit:  func(a *fontatlas.Atlas) { a.Font.Ascent = 1 << 15 },
			field: "ascent",
		},
		{
			name: "slot glyph size",
			edit: func(a *fontatlas.Atlas) {
				a.Canvas = nil
				a.Layout.SlotGlyphSize = 70000
			},
			field: "slot glyph size",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAtlas(t)
			tt.edit(a)

			var buf bytes.Buffer
			err := Encode(&buf, a)
			var oe *fontatlas.EncodingOverflowError
			if !errors.As(err, &oe) {
				t.Fatalf("err = %v, want EncodingOverflowError", err)
			}
			if oe.Field != tt.field {
				t.Errorf("Field = %q, want %q", oe.Field, tt.field)
			}
			if buf.Len() != 0 {
				t.Errorf("%d bytes written on failure", buf.Len())
			}
			if fontatlas.ErrorKind(err) != "EncodingOverflowError" {
				t.Errorf("ErrorKind = %q", fontatlas.ErrorKind(err))
			}
		})
	}
}

func setRecord(a *fontatlas.Atlas, i int, fn func(r *fontatlas.GlyphRecord)) {
	records := a.Table.Records()
	fn(&records[i])
	t, err := fontatlas.NewTable(records)
	if err != nil {
		panic(err)
	}
	a.Table = t
}

func TestMarshal_CanvasMismatch(t *testing.T) {
	a := testAtlas(t)
	a.Canvas = fontatlas.NewCanvas(10, 10)
	if _, err := Marshal(a); err == nil {
		t.Fatal("Marshal accepted a canvas that does not match the layout")
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	good, err := Marshal(testAtlas(t))
	if err != nil {
		t.Fatal(err)
	}
	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(good))
	}
	le := binary.LittleEndian

	tests := []struct {
		name  string
		data  []byte
		check func(error) bool
	}{
		{"empty", nil, is(ErrTruncated)},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), is(ErrBadMagic)},
		{"short header", good[:HeaderSize-1], is(ErrTruncated)},
		{"short records", good[:len(good)-1], is(ErrTruncated)},
		{"trailing bytes", append(bytes.Clone(good), 0), inconsistent},
		{"extra record", append(bytes.Clone(good), good[HeaderSize:HeaderSize+RecordSize]...), inconsistent},
		{"version", mutate(func(b []byte) []byte { le.PutUint16(b[4:], 2); return b }), func(err error) bool {
			var ve *UnsupportedVersionError
			return errors.As(err, &ve) && ve.Version == 2
		}},
		{"columns", mutate(func(b []byte) []byte { le.PutUint16(b[20:], 5); return b }), inconsistent},
		{"record size", mutate(func(b []byte) []byte { le.PutUint16(b[8:], 48); return b }), inconsistent},
		{"zero glyphs", mutate(func(b []byte) []byte { le.PutUint32(b[28:], 0); return b[:HeaderSize] }), inconsistent},
		{"clipped flag", mutate(func(b []byte) []byte { le.PutUint16(b[10:], 0); return b }), inconsistent},
		{"duplicate", mutate(func(b []byte) []byte {
			copy(b[HeaderSize+RecordSize:], b[HeaderSize:HeaderSize+4])
			return b
		}), func(err error) bool {
			var de *fontatlas.DuplicateGlyphError
			return errors.As(err, &de)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := Unmarshal(tt.data)
			if md != nil || !tt.check(err) {
				t.Errorf("Unmarshal = (%v, %v)", md, err)
			}
		})
	}
}

func TestDecode_ReadsOneFile(t *testing.T) {
	good, err := Marshal(testAtlas(t))
	if err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(append(bytes.Clone(good), "next"...))
	md, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if md.Table.Len() != 5 {
		t.Errorf("decoded %d records, want 5", md.Table.Len())
	}
	if r.Len() != len("next") {
		t.Errorf("%d bytes left unread, want %d", r.Len(), len("next"))
	}
}

func TestDecode_Rejects(t *testing.T) {
	good, err := Marshal(testAtlas(t))
	if err != nil {
		t.Fatal(err)
	}
	huge := bytes.Clone(good[:HeaderSize])
	binary.LittleEndian.PutUint32(huge[28:], 1<<31)
	badMagic := bytes.Clone(good)
	badMagic[3] = 'X'

	tests := []struct {
		name  string
		data  []byte
		check func(error) bool
	}{
		{"empty", nil, is(ErrTruncated)},
		{"short header", good[:10], is(ErrTruncated)},
		{"bad magic", badMagic, is(ErrBadMagic)},
		{"short records", good[:len(good)-RecordSize], is(ErrTruncated)},
		{"huge count", huge, is(ErrTruncated)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := Decode(bytes.NewReader(tt.data))
			if md != nil || !tt.check(err) {
				t.Errorf("Decode = (%v, %v)", md, err)
			}
		})
	}
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func inconsistent(err error) bool {
	var ie *InconsistentHeaderError
	return errors.As(err, &ie)
}

func TestEncodeJSON(t *testing.T) {
	a := testAtlas(t)
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, a); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	var doc jsonAtlas
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.Font != "Test Sans" || doc.Width != 60 || doc.Columns != 3 || doc.LineHeight != 18 || len(doc.Glyphs) != 5 {
		t.Errorf("header = %+v", doc)
	}

	a0, _ := a.Table.Lookup('A')
	var g jsonGlyph
	for _, jg := range doc.Glyphs {
		if jg.Char == "A" {
			g = jg
		}
	}
	if g.Codepoint != "U+0041" || g.X != a0.Box.Min.X || g.W != 10 || g.H != 12 {
		t.Errorf("glyph A = %+v", g)
	}
	if want := float64(a0.Box.Max.X) / 60; g.U1 != want {
		t.Errorf("u1 = %v, want %v", g.U1, want)
	}
}
