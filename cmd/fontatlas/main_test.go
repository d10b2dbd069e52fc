package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fontatlas/bmfa"
)

// writeFont stores the Go Regular font in a fresh directory and returns
// the directory and the font path.
func writeFont(t *testing.T) (dir, font string) {
	t.Helper()
	dir = t.TempDir()
	font = filepath.Join(dir, "go.ttf")
	if err := os.WriteFile(font, goregular.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	return dir, font
}

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stderr bytes.Buffer
	code := run(context.Background(), args, &stderr)
	return code, stderr.String()
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_Success(t *testing.T) {
	for _, parser := range []string{"ximage", "gotext"} {
		t.Run(parser, func(t *testing.T) {
			dir, font := writeFont(t)
			out := filepath.Join(dir, "atlas.png")

			code, stderr := runCLI(t,
				"-input", font, "-output", out,
				"-padding", "2", "-slot-glyph-size", "32", "-pixel-size", "24",
				"-charset", "ascii", "-parser", parser, "-json", "-log-format", "json")
			if code != exitOK {
				t.Fatalf("exit %d, stderr:\n%s", code, stderr)
			}

			want := []string{"atlas.bmfa", "atlas.json", "atlas.png", "go.ttf"}
			if got := dirNames(t, dir); !slices.Equal(got, want) {
				t.Errorf("directory holds %v, want %v", got, want)
			}

			f, err := os.Open(filepath.Join(dir, "atlas.bmfa"))
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			md, err := bmfa.Decode(f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if md.Table.Len() != 95 || md.Layout.Columns != 10 || md.Layout.SlotSize != 36 {
				t.Errorf("layout = %+v, %d records", md.Layout, md.Table.Len())
			}

			imgFile, err := os.Open(out)
			if err != nil {
				t.Fatal(err)
			}
			defer imgFile.Close()
			img, err := png.Decode(imgFile)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != md.Layout.Width || img.Bounds().Dy() != md.Layout.Height {
				t.Errorf("image is %v, layout is %dx%d", img.Bounds(), md.Layout.Width, md.Layout.Height)
			}

			data, err := os.ReadFile(filepath.Join(dir, "atlas.json"))
			if err != nil {
				t.Fatal(err)
			}
			if !json.Valid(data) {
				t.Error("sidecar is not valid JSON")
			}

			if !strings.Contains(stderr, `"msg":"fontatlas: atlas written"`) {
				t.Errorf("no completion log in:\n%s", stderr)
			}
			for _, key := range []string{`"font_glyphs":`, `"line_height":`} {
				if !strings.Contains(stderr, key) {
					t.Errorf("log has no %s field:\n%s", key, stderr)
				}
			}
		})
	}
}

func TestRun_DefaultExtension(t *testing.T) {
	dir, font := writeFont(t)
	code, stderr := runCLI(t,
		"-input", font, "-output", filepath.Join(dir, "atlas"),
		"-padding", "0", "-slot-glyph-size", "16", "-charset", "A,B", "-log-level", "error")
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	want := []string{"atlas.bmfa", "atlas.png", "go.ttf"}
	if got := dirNames(t, dir); !slices.Equal(got, want) {
		t.Errorf("directory holds %v, want %v", got, want)
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	code, stderr := runCLI(t,
		"-input", filepath.Join(dir, "missing.ttf"), "-output", filepath.Join(dir, "atlas.png"),
		"-padding", "1", "-slot-glyph-size", "16")
	if code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
	if !strings.HasPrefix(stderr, "fontatlas: IOError: ") {
		t.Errorf("stderr = %q", stderr)
	}
	if names := dirNames(t, dir); len(names) != 0 {
		t.Errorf("files left behind: %v", names)
	}
}

func TestRun_InputIsDirectory(t *testing.T) {
	dir := t.TempDir()
	code, _ := runCLI(t,
		"-input", dir, "-output", filepath.Join(dir, "atlas.png"),
		"-padding", "1", "-slot-glyph-size", "16")
	if code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
}

func TestRun_MissingRequiredFlags(t *testing.T) {
	full := map[string]string{
		"-input":           "font.ttf",
		"-output":          "atlas.png",
		"-padding":         "1",
		"-slot-glyph-size": "16",
	}
	for _, drop := range requiredFlags {
		var args []string
		for flagName, value := range full {
			if flagName != "-"+drop {
				args = append(args, flagName, value)
			}
		}
		code, stderr := runCLI(t, args...)
		if code != exitUsage {
			t.Errorf("without -%s: exit %d, want %d", drop, code, exitUsage)
		}
		if !strings.Contains(stderr, "-"+drop) {
			t.Errorf("without -%s: stderr does not name the flag:\n%s", drop, stderr)
		}
	}

	if code, _ := runCLI(t); code != exitUsage {
		t.Errorf("no flags: exit %d, want %d", code, exitUsage)
	}
	if code, _ := runCLI(t, "-padding", "-1"); code != exitUsage {
		t.Errorf("negative padding: exit %d, want %d", code, exitUsage)
	}
}

func TestRun_ExistingOutput(t *testing.T) {
	dir, font := writeFont(t)
	out := filepath.Join(dir, "atlas.png")
	if err := os.WriteFile(out, []byte("keep me"), 0o600); err != nil {
		t.Fatal(err)
	}
	args := []string{"-input", font, "-output", out, "-padding", "1", "-slot-glyph-size", "16",
		"-charset", "ascii", "-log-level", "error"}

	code, stderr := runCLI(t, args...)
	if code != exitError || !strings.Contains(stderr, "-force") {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if data, _ := os.ReadFile(out); string(data) != "keep me" {
		t.Error("existing output was modified without -force")
	}

	code, stderr = runCLI(t, append(args, "-force")...)
	if code != exitOK {
		t.Fatalf("-force: exit %d, stderr:\n%s", code, stderr)
	}
	if data, _ := os.ReadFile(out); !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("-force did not replace the output")
	}
	want := []string{"atlas.bmfa", "atlas.png", "go.ttf"}
	if got := dirNames(t, dir); !slices.Equal(got, want) {
		t.Errorf("directory holds %v, want %v", got, want)
	}
}

func TestRun_FailedCommitRestoresOutputs(t *testing.T) {
	for _, existing := range []bool{false, true} {
		t.Run(fmt.Sprintf("existing=%v", existing), func(t *testing.T) {
			dir, font := writeFont(t)
			out := filepath.Join(dir, "atlas.png")
			want := []string{"atlas.bmfa", "go.ttf"}
			if existing {
				if err := os.WriteFile(out, []byte("old image"), 0o600); err != nil {
					t.Fatal(err)
				}
				want = []string{"atlas.bmfa", "atlas.png", "go.ttf"}
			}
			// The image is placed first; a directory at the metadata path
			// makes the second rename fail.
			if err := os.MkdirAll(filepath.Join(dir, "atlas.bmfa", "keep"), 0o755); err != nil {
				t.Fatal(err)
			}

			code, stderr := runCLI(t, "-input", font, "-output", out,
				"-padding", "1", "-slot-glyph-size", "16", "-charset", "A,B",
				"-force", "-log-level", "error")
			if code != exitError {
				t.Fatalf("exit %d, want %d", code, exitError)
			}
			if !strings.HasPrefix(stderr, "fontatlas: IOError: ") {
				t.Errorf("stderr = %q", stderr)
			}
			if got := dirNames(t, dir); !slices.Equal(got, want) {
				t.Errorf("directory holds %v, want %v", got, want)
			}
			if existing {
				if data, _ := os.ReadFile(out); string(data) != "old image" {
					t.Errorf("image = %q, want the original contents", data)
				}
			}
			if info, err := os.Stat(filepath.Join(dir, "atlas.bmfa")); err != nil || !info.IsDir() {
				t.Errorf("metadata directory disturbed: %v", err)
			}
		})
	}
}

func TestRun_OversizeFail(t *testing.T) {
	dir, font := writeFont(t)
	code, stderr := runCLI(t,
		"-input", font, "-output", filepath.Join(dir, "atlas.png"),
		"-padding", "1", "-slot-glyph-size", "8", "-pixel-size", "32",
		"-charset", "ascii", "-oversize", "fail", "-log-level", "error")
	if code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
	if !strings.HasPrefix(stderr, "fontatlas: GlyphTooLargeError: ") {
		t.Errorf("stderr = %q", stderr)
	}
	if names := dirNames(t, dir); !slices.Equal(names, []string{"go.ttf"}) {
		t.Errorf("files left behind: %v", names)
	}
}

func TestRun_BadValues(t *testing.T) {
	dir, font := writeFont(t)
	base := []string{"-input", font, "-output", filepath.Join(dir, "atlas.png"),
		"-padding", "1", "-slot-glyph-size", "16", "-log-level", "error"}

	tests := []struct {
		extra []string
		kind  string
	}{
		{[]string{"-charset", "klingon"}, "CharsetError"},
		{[]string{"-parser", "freetype"}, "UnknownParserError"},
		{[]string{"-charset", "U+4E00"}, "EmptyGlyphSetError"},
		{[]string{"-slot-glyph-size", "0"}, "InvalidDimensionError"},
	}
	for _, tt := range tests {
		code, stderr := runCLI(t, append(slices.Clone(base), tt.extra...)...)
		if code != exitError || !strings.HasPrefix(stderr, "fontatlas: "+tt.kind+": ") {
			t.Errorf("%v: exit %d, stderr %q", tt.extra, code, stderr)
		}
	}
	if names := dirNames(t, dir); !slices.Equal(names, []string{"go.ttf"}) {
		t.Errorf("files left behind: %v", names)
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		in, img, meta, sidecar string
	}{
		{"atlas.png", "atlas.png", "atlas.bmfa", "atlas.json"},
		{"out/atlas", "out/atlas.png", "out/atlas.bmfa", "out/atlas.json"},
		{"a.b/atlas.tiff", "a.b/atlas.tiff", "a.b/atlas.bmfa", "a.b/atlas.json"},
	}
	for _, tt := range tests {
		img, meta, sidecar := outputPaths(tt.in)
		if img != tt.img || meta != tt.meta || sidecar != tt.sidecar {
			t.Errorf("outputPaths(%q) = %q, %q, %q", tt.in, img, meta, sidecar)
		}
	}
}
