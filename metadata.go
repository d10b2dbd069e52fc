package fontatlas

import (
	"image"
	"iter"
	"slices"
	"sort"
)

// GlyphRecord is the atlas metadata of one glyph. All rectangles are in
// canvas pixel coordinates.
type GlyphRecord struct {
	Codepoint rune

	// Slot is the whole slot, padding included.
	Slot image.Rectangle

	// Box is the part of the slot interior covered by the bitmap. It is
	// anchored at the interior's top-left corner and is empty for blank glyphs.
	Box image.Rectangle

	BearingX int
	BearingY int
	Advance  int

	// Clipped reports that the bitmap was larger than the slot interior
	// and lost pixels on its right or bottom edge.
	Clipped bool
}

// MetadataBuilder collects glyph records in ascending codepoint order.
type MetadataBuilder struct {
	records   []GlyphRecord
	finalized bool
}

// NewMetadataBuilder returns a builder with room for capacity records.
func NewMetadataBuilder(capacity int) *MetadataBuilder {
	return &MetadataBuilder{records: make([]GlyphRecord, 0, capacity)}
}

// Add appends a record. Its codepoint must be greater than that of the
// previous record.
func (b *MetadataBuilder) Add(r GlyphRecord) error {
	if b.finalized {
		return ErrTableFinalized
	}
	if n := len(b.records); n > 0 {
		last := b.records[n-1].Codepoint
		if r.Codepoint == last {
			return &DuplicateGlyphError{Codepoint: r.Codepoint}
		}
		if r.Codepoint < last {
			return ErrUnsortedRecords
		}
	}
	b.records = append(b.records, r)
	return nil
}

// Len returns the number of records added so far.
func (b *MetadataBuilder) Len() int {
	return len(b.records)
}

// Finalize freezes the builder and returns the table. Later calls to Add fail.
func (b *MetadataBuilder) Finalize() *Table {
	b.finalized = true
	return &Table{records: b.records}
}

// Table is the immutable, codepoint-ordered list of glyph records.
type Table struct {
	records []GlyphRecord
}

// NewTable builds a table from records that are already in strictly
// ascending codepoint order.
func NewTable(records []GlyphRecord) (*Table, error) {
	b := NewMetadataBuilder(len(records))
	for _, r := range records {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Finalize(), nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns the i-th record.
func (t *Table) At(i int) GlyphRecord {
	return t.records[i]
}

// Records returns a copy of all records.
func (t *Table) Records() []GlyphRecord {
	return slices.Clone(t.records)
}

// Lookup finds the record for a codepoint.
func (t *Table) Lookup(cp rune) (GlyphRecord, bool) {
	i := sort.Search(len(t.records), func(i int) bool {
		return t.records[i].Codepoint >= cp
	})
	if i < len(t.records) && t.records[i].Codepoint == cp {
		return t.records[i], true
	}
	return GlyphRecord{}, false
}

// All iterates over the records in table order.
func (t *Table) All() iter.Seq2[int, GlyphRecord] {
	return func(yield func(int, GlyphRecord) bool) {
		for i, r := range t.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// ClippedCount returns how many glyphs lost pixels to clipping.
func (t *Table) ClippedCount() int {
	n := 0
	for _, r := range t.records {
		if r.Clipped {
			n++
		}
	}
	return n
}
