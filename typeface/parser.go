package typeface

import (
	"slices"
	"sync"

	"github.com/gogpu/fontatlas"
)

// FontParser is a font parsing backend.
type FontParser interface {
	// Parse parses font data (TTF or OTF) and returns a ParsedFont.
	Parse(data []byte) (ParsedFont, error)
}

// ParsedFont is a parsed font file. It is safe for concurrent use;
// rasterization state lives in the Rasterizers it creates.
type ParsedFont interface {
	// Name returns the font family name, or "" if the font has none.
	Name() string

	// FullName returns the full font name, or "" if the font has none.
	FullName() string

	// NumGlyphs returns the number of glyphs in the font.
	NumGlyphs() int

	// HasGlyph reports whether the font maps r to a glyph.
	HasGlyph(r rune) bool

	// Metrics returns the font-level metrics at pixelSize pixels per em,
	// rounded to whole pixels. Name is left empty.
	Metrics(pixelSize int) fontatlas.FontInfo

	// NewRasterizer returns a rasterizer for pixelSize pixels per em.
	NewRasterizer(pixelSize int) (Rasterizer, error)
}

// Rasterizer turns codepoints into glyph bitmaps at one pixel size.
// A Rasterizer is not safe for concurrent use; create one per goroutine.
type Rasterizer interface {
	// Rasterize renders r. It reports false if the font has no glyph for r.
	// The returned bitmap is owned by the caller.
	Rasterize(r rune) (fontatlas.Glyph, bool, error)

	// Close releases the rasterizer.
	Close() error
}

// DefaultParser is the name of the parser used when none is chosen.
const DefaultParser = "ximage"

var (
	parserMu       sync.RWMutex
	parserRegistry = map[string]FontParser{
		"ximage": ximageParser{},
		"gotext": gotextParser{},
	}
)

// RegisterParser registers a font parser under name, replacing any
// parser already registered under that name.
func RegisterParser(name string, parser FontParser) {
	parserMu.Lock()
	defer parserMu.Unlock()
	parserRegistry[name] = parser
}

// Parsers returns the registered parser names in sorted order.
func Parsers() []string {
	parserMu.RLock()
	defer parserMu.RUnlock()
	names := make([]string, 0, len(parserRegistry))
	for name := range parserRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupParser(name string) (FontParser, error) {
	parserMu.RLock()
	defer parserMu.RUnlock()
	p, ok := parserRegistry[name]
	if !ok {
		return nil, &UnknownParserError{Name: name}
	}
	return p, nil
}
