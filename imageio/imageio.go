// Package imageio writes atlas canvases as image files.
//
// Supported formats are PNG, BMP, TIFF, and the Netpbm PGM and PAM formats.
// The canvas is written either as a single gray channel or as RGBA with all
// four channels set to the glyph coverage.
package imageio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/fontatlas"
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	PGM  Format = "pgm"
	PAM  Format = "pam"
)

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// FormatFromPath picks the format from the file extension.
// A path without an extension is PNG.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "", ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".pgm":
		return PGM, nil
	case ".pam":
		return PAM, nil
	}
	return "", fmt.Errorf("imageio: unsupported image extension %q", ext)
}

// Channels selects the pixel layout of the written image.
type Channels int

const (
	// Gray writes one coverage channel.
	Gray Channels = iota

	// RGBA writes r = g = b = a = coverage, i.e. premultiplied white.
	RGBA
)

// String returns the flag spelling of c.
func (c Channels) String() string {
	switch c {
	case Gray:
		return "gray"
	case RGBA:
		return "rgba"
	}
	return fmt.Sprintf("Channels(%d)", int(c))
}

// ParseChannels parses "gray" or "rgba".
func ParseChannels(s string) (Channels, error) {
	switch strings.ToLower(s) {
	case "gray", "grey":
		return Gray, nil
	case "rgba":
		return RGBA, nil
	}
	return Gray, fmt.Errorf("imageio: unknown channel layout %q", s)
}

// Encode writes the canvas to w.
func Encode(w io.Writer, c *fontatlas.Canvas, f Format, ch Channels) error {
	img, err := convert(c, ch)
	if err != nil {
		return err
	}

	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case PGM:
		if ch != Gray {
			return fmt.Errorf("imageio: pgm supports only gray output")
		}
		return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255})
	case PAM:
		tuple := "GRAYSCALE"
		if ch == RGBA {
			tuple = "RGB_ALPHA"
		}
		return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PAM, MaxValue: 255, TupleType: tuple})
	}
	return fmt.Errorf("imageio: unsupported format %q", string(f))
}

// convert copies the coverage samples into an image of the chosen layout.
func convert(c *fontatlas.Canvas, ch Channels) (image.Image, error) {
	src := c.Image()
	r := image.Rect(0, 0, c.Width(), c.Height())

	switch ch {
	case Gray:
		dst := image.NewGray(r)
		for y := 0; y < r.Dy(); y++ {
			so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], src.Pix[so:so+r.Dx()])
		}
		return dst, nil
	case RGBA:
		dst := image.NewRGBA(r)
		for y := 0; y < r.Dy(); y++ {
			so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			row := dst.Pix[y*dst.Stride : y*dst.Stride+4*r.Dx()]
			for x, a := range src.Pix[so : so+r.Dx()] {
				row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = a, a, a, a
			}
		}
		return dst, nil
	}
	return nil, fmt.Errorf("imageio: unknown channel layout %d", int(ch))
}
