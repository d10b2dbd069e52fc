// Command fontatlas rasterizes a font into a bitmap glyph atlas.
//
// It writes the atlas image, a BMFA metadata file next to it, and
// optionally a JSON sidecar:
//
//	fontatlas -input Go-Regular.ttf -output atlas.png -padding 2 -slot-glyph-size 48
//
// produces atlas.png and atlas.bmfa. Nothing is written unless every step
// succeeds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/gogpu/fontatlas"
	"github.com/gogpu/fontatlas/bmfa"
	"github.com/gogpu/fontatlas/imageio"
	"github.com/gogpu/fontatlas/typeface"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	input         string
	output        string
	padding       uint
	slotGlyphSize uint
	pixelSize     uint
	charset       string
	parser        string
	oversize      string
	channels      string
	workers       uint
	writeJSON     bool
	force         bool
	logLevel      string
	logFormat     string
}

var requiredFlags = []string{"input", "output", "padding", "slot-glyph-size"}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	flags := flag.NewFlagSet("fontatlas", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&o.input, "input", "", "font file to rasterize (TTF or OTF, required)")
	flags.StringVar(&o.output, "output", "", "atlas image path; the extension picks the format (required)")
	flags.UintVar(&o.padding, "padding", 0, "blank pixels around each glyph slot interior (required)")
	flags.UintVar(&o.slotGlyphSize, "slot-glyph-size", 0, "interior size of each slot in pixels (required)")
	flags.UintVar(&o.pixelSize, "pixel-size", 0, "rasterization size in pixels per em (default: slot glyph size)")
	flags.StringVar(&o.charset, "charset", typeface.DefaultCharset, "codepoints to include, e.g. \"latin1,Greek,U+2190-U+21FF\"")
	flags.StringVar(&o.parser, "parser", typeface.DefaultParser, "font backend: "+strings.Join(typeface.Parsers(), " or "))
	flags.StringVar(&o.oversize, "oversize", fontatlas.OversizeClip.String(), "glyphs larger than the slot: clip or fail")
	flags.StringVar(&o.channels, "channels", imageio.Gray.String(), "image channels: gray or rgba")
	flags.UintVar(&o.workers, "workers", 0, "worker goroutines, 0 for one per CPU")
	flags.BoolVar(&o.writeJSON, "json", false, "also write a JSON sidecar")
	flags.BoolVar(&o.force, "force", false, "overwrite existing output files")
	flags.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&o.logFormat, "log-format", "auto", "text, json, or auto (text on a terminal)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		flags.Usage()
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var missing []string
	for _, name := range requiredFlags {
		if !set[name] {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		flags.Usage()
		return nil, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	if o.input == "" || o.output == "" {
		flags.Usage()
		return nil, errors.New("-input and -output must not be empty")
	}
	if o.pixelSize == 0 {
		o.pixelSize = o.slotGlyphSize
	}
	return &o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "fontatlas: %v\n", err)
		return exitUsage
	}

	logger, err := newLogger(stderr, o.logLevel, o.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "fontatlas: %v\n", err)
		return exitUsage
	}
	fontatlas.SetLogger(logger)
	defer fontatlas.SetLogger(nil)

	if err := generate(ctx, o); err != nil {
		fmt.Fprintf(stderr, "fontatlas: %s: %v\n", errorKind(err), err)
		return exitError
	}
	return exitOK
}

// newLogger builds the CLI's slog logger. The auto format picks text when
// w is a terminal and JSON otherwise.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "auto":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid -log-format %q", format)
}

// outputPaths derives the three output paths from -output.
func outputPaths(output string) (image, meta, sidecar string) {
	image = output
	if filepath.Ext(image) == "" {
		image += imageio.PNG.Extension()
	}
	stem := strings.TrimSuffix(image, filepath.Ext(image))
	return image, stem + ".bmfa", stem + ".json"
}

func generate(ctx context.Context, o *options) error {
	info, err := os.Stat(o.input)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %s is not a regular file", o.input)
	}

	imagePath, metaPath, jsonPath := outputPaths(o.output)
	format, err := imageio.FormatFromPath(imagePath)
	if err != nil {
		return err
	}
	channels, err := imageio.ParseChannels(o.channels)
	if err != nil {
		return err
	}
	policy, err := fontatlas.ParseOversizePolicy(o.oversize)
	if err != nil {
		return err
	}
	runes, err := typeface.ParseCharset(o.charset)
	if err != nil {
		return err
	}

	paths := []string{imagePath, metaPath}
	if o.writeJSON {
		paths = append(paths, jsonPath)
	}
	if !o.force {
		for _, p := range paths {
			if _, err := os.Lstat(p); err == nil {
				return fmt.Errorf("output %s already exists (use -force to overwrite): %w", p, fs.ErrExist)
			}
		}
	}

	src, err := typeface.NewFontSourceFromFile(o.input, typeface.WithParser(o.parser))
	if err != nil {
		return err
	}
	defer src.Close()

	parsed, err := src.Parsed()
	if err != nil {
		return err
	}
	log := fontatlas.Logger()
	log.Info("fontatlas: font loaded", "font", src.Name(), "parser", src.Parser(),
		"font_glyphs", parsed.NumGlyphs(), "codepoints", len(runes))

	set, err := typeface.Sample(ctx, src, runes, typeface.SampleOptions{
		PixelSize: int(o.pixelSize),
		Workers:   int(o.workers),
	})
	if err != nil {
		return err
	}

	atlas, err := fontatlas.Build(set, fontatlas.Config{
		SlotGlyphSize: int(o.slotGlyphSize),
		Padding:       int(o.padding),
		Oversize:      policy,
		Workers:       int(o.workers),
	})
	if err != nil {
		return err
	}

	out := &outputSet{}
	defer out.abort()

	w, err := out.create(imagePath)
	if err != nil {
		return err
	}
	if err := imageio.Encode(w, atlas.Canvas, format, channels); err != nil {
		return fmt.Errorf("encode %s: %w", imagePath, err)
	}

	w, err = out.create(metaPath)
	if err != nil {
		return err
	}
	if err := bmfa.Encode(w, atlas); err != nil {
		return err
	}

	if o.writeJSON {
		w, err = out.create(jsonPath)
		if err != nil {
			return err
		}
		if err := bmfa.EncodeJSON(w, atlas); err != nil {
			return err
		}
	}

	if err := out.commit(); err != nil {
		return err
	}
	log.Info("fontatlas: atlas written",
		"image", imagePath, "metadata", metaPath,
		"width", atlas.Layout.Width, "height", atlas.Layout.Height,
		"glyphs", atlas.Table.Len(), "clipped", atlas.Table.ClippedCount(),
		"line_height", atlas.Font.LineHeight())
	return nil
}

// errorKind names err for the one-line CLI diagnostic.
func errorKind(err error) string {
	if kind := fontatlas.ErrorKind(err); kind != "" {
		return kind
	}
	var (
		charsetErr *typeface.CharsetError
		parserErr  *typeface.UnknownParserError
		pathErr    *fs.PathError
		linkErr    *os.LinkError
	)
	switch {
	case errors.As(err, &charsetErr):
		return "CharsetError"
	case errors.As(err, &parserErr):
		return "UnknownParserError"
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.Is(err, fs.ErrExist):
		return "IOError"
	}
	return "Error"
}
