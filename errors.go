package fontatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fontatlas package.
var (
	// ErrEmptyGlyphSet is returned when there is no glyph to pack.
	ErrEmptyGlyphSet = errors.New("fontatlas: empty glyph set")

	// ErrUnsortedRecords is returned when records are not added in
	// ascending codepoint order.
	ErrUnsortedRecords = errors.New("fontatlas: glyph records out of codepoint order")

	// ErrTableFinalized is returned when a record is added to a finalized builder.
	ErrTableFinalized = errors.New("fontatlas: metadata table already finalized")
)

// InvalidDimensionError reports a slot size, padding, or canvas size
// that cannot produce a layout.
type InvalidDimensionError struct {
	Field  string
	Value  int
	Reason string
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("fontatlas: invalid %s %d: %s", e.Field, e.Value, e.Reason)
}

// DuplicateGlyphError is returned when a codepoint occurs more than once.
type DuplicateGlyphError struct {
	Codepoint rune
}

func (e *DuplicateGlyphError) Error() string {
	return fmt.Sprintf("fontatlas: duplicate glyph %U", e.Codepoint)
}

// GlyphTooLargeError is returned under OversizeFail when a bitmap does not
// fit the slot interior.
type GlyphTooLargeError struct {
	Codepoint     rune
	Width, Height int
	Limit         int
}

func (e *GlyphTooLargeError) Error() string {
	return fmt.Sprintf("fontatlas: glyph %U is %dx%d, slot interior is %dx%d",
		e.Codepoint, e.Width, e.Height, e.Limit, e.Limit)
}

// EncodingOverflowError is returned when a value does not fit the
// fixed-width field of the atlas format.
type EncodingOverflowError struct {
	Field string
	Value int64
	Max   int64
}

func (e *EncodingOverflowError) Error() string {
	return fmt.Sprintf("fontatlas: %s value %d out of range (max %d)", e.Field, e.Value, e.Max)
}

// ErrorKind names the error category of err, or returns "" when err does
// not belong to the atlas taxonomy.
func ErrorKind(err error) string {
	var (
		dimErr      *InvalidDimensionError
		dupErr      *DuplicateGlyphError
		largeErr    *GlyphTooLargeError
		overflowErr *EncodingOverflowError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyGlyphSet):
		return "EmptyGlyphSetError"
	case errors.As(err, &dimErr):
		return "InvalidDimensionError"
	case errors.As(err, &dupErr):
		return "DuplicateGlyphError"
	case errors.As(err, &largeErr):
		return "GlyphTooLargeError"
	case errors.As(err, &overflowErr):
		return "EncodingOverflowError"
	}
	return ""
}
