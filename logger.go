package fontatlas

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from compositing workers.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for fontatlas and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-glyph diagnostics (skipped codepoints, slot assignment)
//   - [slog.LevelInfo]: pipeline milestones (layout chosen, atlas built)
//   - [slog.LevelWarn]: lossy but non-fatal events (a glyph was clipped)
//
// Example:
//
//	fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages (typeface, bmfa) call this
// to share one configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// codepoint formats as U+XXXX only when a handler actually emits the record.
type codepoint rune

func (c codepoint) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%U", rune(c)))
}

// CodepointAttr returns a "codepoint" attribute rendered in U+XXXX notation.
func CodepointAttr(r rune) slog.Attr {
	return slog.Any("codepoint", codepoint(r))
}
