package typeface

import (
	"fmt"
	"os"
	"sync"
)

// FontSource is a loaded font file.
//
// A FontSource owns its parsed font and must be closed when no longer
// needed; nothing is cached globally. It is safe for concurrent use
// and must not be copied after creation.
type FontSource struct {
	// addr points to the FontSource itself and detects copies.
	addr *FontSource

	mu     sync.RWMutex
	data   []byte
	parsed ParsedFont

	name   string
	parser string
}

// SourceOption configures FontSource creation.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	parserName string
}

// WithParser selects the font parser backend by its registered name.
// The default is DefaultParser.
func WithParser(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parserName = name
	}
}

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is copied and can be reused after this call.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	config := sourceConfig{parserName: DefaultParser}
	for _, opt := range opts {
		opt(&config)
	}

	parser, err := lookupParser(config.parserName)
	if err != nil {
		return nil, err
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	parsed, err := parser.Parse(dataCopy)
	if err != nil {
		return nil, err
	}

	s := &FontSource{
		data:   dataCopy,
		parsed: parsed,
		parser: config.parserName,
	}
	s.addr = s
	s.name = extractFontName(parsed)
	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string, opts ...SourceOption) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to read font file: %w", err)
	}
	return NewFontSource(data, opts...)
}

// Name returns the font name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// Parser returns the name of the parser backend in use.
func (s *FontSource) Parser() string {
	s.copyCheck()
	return s.parser
}

// Parsed returns the parsed font, or ErrSourceClosed after Close.
func (s *FontSource) Parsed() (ParsedFont, error) {
	s.copyCheck()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.parsed == nil {
		return nil, ErrSourceClosed
	}
	return s.parsed, nil
}

// Close releases the font data. Close is idempotent.
// Rasterizers created before Close stay usable until they are closed.
func (s *FontSource) Close() error {
	s.copyCheck()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.parsed = nil
	return nil
}

// copyCheck panics if the FontSource was copied by value.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("typeface: FontSource must not be copied by value")
	}
}

// extractFontName prefers the family name, then the full name.
func extractFontName(parsed ParsedFont) string {
	if name := parsed.Name(); name != "" {
		return name
	}
	if fullName := parsed.FullName(); fullName != "" {
		return fullName
	}
	return "Unknown Font"
}
