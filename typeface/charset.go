package typeface

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/rangetable"
)

// DefaultCharset is the charset used by the command line tool.
const DefaultCharset = "latin1"

var (
	asciiTable  = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x20, Hi: 0x7e, Stride: 1}}}
	latin1Table = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x20, Hi: 0x7e, Stride: 1},
		{Lo: 0xa0, Hi: 0xff, Stride: 1},
	}}
)

// ASCII returns the printable ASCII codepoints, U+0020 to U+007E.
func ASCII() []rune { return codepoints(asciiTable) }

// Latin1 returns printable ASCII plus U+00A0 to U+00FF.
func Latin1() []rune { return codepoints(latin1Table) }

// ParseCharset parses a comma-separated codepoint set specification and
// returns the codepoints in ascending order without duplicates.
//
// Each item is one of:
//
//	ascii, latin1        named sets
//	Greek, Cyrillic, ... Unicode script names, case-insensitive
//	U+00E9               one codepoint
//	U+0400-U+04FF        an inclusive range
//	é                    one literal character
//
// Use U+002C for a comma.
func ParseCharset(spec string) ([]rune, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, &CharsetError{Item: spec, Reason: "empty charset"}
	}

	var tables []*unicode.RangeTable
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		t, err := parseCharsetItem(item)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return codepoints(rangetable.Merge(tables...)), nil
}

func parseCharsetItem(item string) (*unicode.RangeTable, error) {
	switch {
	case item == "":
		return nil, &CharsetError{Item: item, Reason: "empty item"}
	case strings.EqualFold(item, "ascii"):
		return asciiTable, nil
	case strings.EqualFold(item, "latin1"):
		return latin1Table, nil
	case utf8.RuneCountInString(item) == 1:
		r, _ := utf8.DecodeRuneInString(item)
		if r == utf8.RuneError {
			return nil, &CharsetError{Item: item, Reason: "invalid UTF-8"}
		}
		return rangetable.New(r), nil
	case hasCodepointPrefix(item):
		return parseCodepointRange(item)
	}

	for name, t := range unicode.Scripts {
		if strings.EqualFold(name, item) {
			return t, nil
		}
	}
	return nil, &CharsetError{Item: item, Reason: "not a named set, script, codepoint, or character"}
}

func parseCodepointRange(item string) (*unicode.RangeTable, error) {
	loStr, hiStr, isRange := strings.Cut(item, "-")
	lo, err := parseCodepoint(loStr)
	if err != nil {
		return nil, &CharsetError{Item: item, Reason: err.Error()}
	}
	if !isRange {
		return rangetable.New(lo), nil
	}

	hi, err := parseCodepoint(hiStr)
	if err != nil {
		return nil, &CharsetError{Item: item, Reason: err.Error()}
	}
	if hi < lo {
		return nil, &CharsetError{Item: item, Reason: "range end before start"}
	}

	t := &unicode.RangeTable{}
	if hi <= 0xffff {
		t.R16 = []unicode.Range16{{Lo: uint16(lo), Hi: uint16(hi), Stride: 1}}
	} else if lo > 0xffff {
		t.R32 = []unicode.Range32{{Lo: uint32(lo), Hi: uint32(hi), Stride: 1}}
	} else {
		t.R16 = []unicode.Range16{{Lo: uint16(lo), Hi: 0xffff, Stride: 1}}
		t.R32 = []unicode.Range32{{Lo: 0x10000, Hi: uint32(hi), Stride: 1}}
	}
	return t, nil
}

func hasCodepointPrefix(s string) bool {
	return len(s) > 2 && (s[0] == 'U' || s[0] == 'u') && s[1] == '+'
}

var errInvalidCodepoint = errors.New("invalid codepoint")

// parseCodepoint parses "U+XXXX"; the prefix is optional.
func parseCodepoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if hasCodepointPrefix(s) {
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, errInvalidCodepoint
	}
	return rune(v), nil
}

// codepoints lists every rune in t in ascending order.
func codepoints(t *unicode.RangeTable) []rune {
	var out []rune
	rangetable.Visit(t, func(r rune) {
		out = append(out, r)
	})
	return out
}
