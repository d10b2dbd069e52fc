package fontatlas

import "fmt"

// Config holds the atlas packing parameters.
type Config struct {
	// SlotGlyphSize is the interior size S of every slot, in pixels.
	// Default: 64
	SlotGlyphSize int

	// Padding is the blank margin P around each interior, in pixels.
	// Default: 0
	Padding int

	// Oversize decides what happens to bitmaps larger than S x S.
	// Default: OversizeClip
	Oversize OversizePolicy

	// Workers is the number of compositing goroutines.
	// 0 means GOMAXPROCS, 1 composites on the calling goroutine.
	Workers int
}

// DefaultConfig returns a 64 pixel slot with no padding, clipping oversized
// glyphs and one worker per CPU.
func DefaultConfig() Config {
	return Config{
		SlotGlyphSize: 64,
		Padding:       0,
		Oversize:      OversizeClip,
		Workers:       0,
	}
}

// Validate checks that the configuration can produce a layout.
func (c *Config) Validate() error {
	if c.SlotGlyphSize <= 0 {
		return &InvalidDimensionError{Field: "slot glyph size", Value: c.SlotGlyphSize, Reason: "must be positive"}
	}
	if c.Padding < 0 {
		return &InvalidDimensionError{Field: "padding", Value: c.Padding, Reason: "must be non-negative"}
	}
	if c.Oversize != OversizeClip && c.Oversize != OversizeFail {
		return fmt.Errorf("fontatlas: invalid oversize policy %d", int(c.Oversize))
	}
	if c.Workers < 0 {
		return &InvalidDimensionError{Field: "workers", Value: c.Workers, Reason: "must be non-negative"}
	}
	return nil
}

// Atlas is a packed glyph atlas: the grid, the pixels, and one record per glyph.
type Atlas struct {
	Layout Layout
	Canvas *Canvas
	Table  *Table
	Font   FontInfo
}

// Build packs a glyph set into a new atlas.
//
// The glyphs are sorted by codepoint and checked for duplicates before the
// layout is planned or the canvas is allocated. Any failure aborts the whole
// build; no partially filled atlas is ever returned.
func Build(set GlyphSet, cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	glyphs, err := prepareGlyphs(set.Glyphs)
	if err != nil {
		return nil, err
	}

	layout, err := PlanLayout(len(glyphs), cfg.SlotGlyphSize, cfg.Padding)
	if err != nil {
		return nil, err
	}
	log := Logger()
	log.Info("fontatlas: layout planned",
		"glyphs", layout.Glyphs, "columns", layout.Columns, "rows", layout.Rows,
		"slot", layout.SlotSize, "width", layout.Width, "height", layout.Height)

	canvas := NewCanvas(layout.Width, layout.Height)
	records, err := NewCompositor(layout, canvas, cfg.Oversize, cfg.Workers).Composite(glyphs)
	if err != nil {
		return nil, err
	}

	builder := NewMetadataBuilder(len(records))
	for _, r := range records {
		if err := builder.Add(r); err != nil {
			return nil, err
		}
	}
	table := builder.Finalize()

	log.Info("fontatlas: atlas built",
		"glyphs", table.Len(), "clipped", table.ClippedCount(),
		"utilization", layout.Utilization())

	return &Atlas{
		Layout: layout,
		Canvas: canvas,
		Table:  table,
		Font:   set.FontInfo,
	}, nil
}
