// Package bmfa encodes atlas metadata in the BMFA binary format and in a
// JSON sidecar.
//
// A BMFA file is a 40 byte header followed by one 32 byte record per glyph,
// in ascending codepoint order. All integers are little-endian.
//
// Header:
//
//	off size field
//	  0    4 magic "BMFA"
//	  4    2 version (1)
//	  6    2 header size (40)
//	  8    2 record size (32)
//	 10    2 flags (bit 0: at least one glyph is clipped)
//	 12    4 canvas width
//	 16    4 canvas height
//	 20    2 columns
//	 22    2 rows
//	 24    2 slot glyph size
//	 26    2 padding
//	 28    4 glyph count
//	 32    2 pixel size
//	 34    2 ascent (signed)
//	 36    2 descent (signed)
//	 38    2 line gap (signed)
//
// Record:
//
//	off size field
//	  0    4 codepoint
//	  4    4 slot x
//	  8    4 slot y
//	 12    2 slot width
//	 14    2 slot height
//	 16    2 box x, relative to the slot
//	 18    2 box y, relative to the slot
//	 20    2 box width
//	 22    2 box height
//	 24    2 bearing x (signed)
//	 26    2 bearing y (signed)
//	 28    2 advance (signed)
//	 30    2 flags (bit 0: clipped)
package bmfa

import (
	"errors"
	"fmt"

	"github.com/gogpu/fontatlas"
)

// Format constants.
const (
	Magic      = "BMFA"
	Version    = 1
	HeaderSize = 40
	RecordSize = 32
)

const (
	headerFlagClipped = 1 << 0
	recordFlagClipped = 1 << 0
)

// Sentinel errors for the bmfa package.
var (
	// ErrBadMagic is returned when the data does not start with "BMFA".
	ErrBadMagic = errors.New("bmfa: bad magic")

	// ErrTruncated is returned when the data ends before the last record.
	ErrTruncated = errors.New("bmfa: truncated data")
)

// UnsupportedVersionError is returned for files written by a newer encoder.
type UnsupportedVersionError struct {
	Version uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("bmfa: unsupported version %d", e.Version)
}

// InconsistentHeaderError is returned when the header does not describe a
// valid atlas layout.
type InconsistentHeaderError struct {
	Reason string
}

func (e *InconsistentHeaderError) Error() string {
	return "bmfa: inconsistent header: " + e.Reason
}

// Metadata is the decoded content of a BMFA file.
type Metadata struct {
	Layout fontatlas.Layout
	Font   fontatlas.FontInfo
	Table  *fontatlas.Table
}
