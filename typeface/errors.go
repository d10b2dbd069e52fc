package typeface

import (
	"errors"
	"fmt"
)

// Sentinel errors for the typeface package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("typeface: empty font data")

	// ErrSourceClosed is returned when a closed FontSource is used.
	ErrSourceClosed = errors.New("typeface: font source is closed")
)

// UnknownParserError is returned when no parser is registered under Name.
type UnknownParserError struct {
	Name string
}

func (e *UnknownParserError) Error() string {
	return fmt.Sprintf("typeface: unknown parser %q", e.Name)
}

// CharsetError is returned for a charset item that cannot be parsed.
type CharsetError struct {
	Item   string
	Reason string
}

func (e *CharsetError) Error() string {
	return fmt.Sprintf("typeface: bad charset item %q: %s", e.Item, e.Reason)
}
