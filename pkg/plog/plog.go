// Package plog provides the process-wide structured logger.
//
// It wraps log/slog with a splitting handler so that routine output (debug,
// info, notice) goes to stdout while warnings and errors go to stderr. The
// minimum level and a quiet mode can be toggled at runtime from any
// goroutine.
package plog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LevelNotice sits between Info and Warn. It is used for per-item progress
// output (COPY, DELETE, ...) that should be suppressible independently of
// operational info messages.
const LevelNotice = slog.Level(2)

// splitHandler routes records below Warn to one handler and Warn and above
// to another.
type splitHandler struct {
	out slog.Handler
	err slog.Handler
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.out.Enabled(ctx, level) || h.err.Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.err.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{out: h.out.WithAttrs(attrs), err: h.err.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{out: h.out.WithGroup(name), err: h.err.WithGroup(name)}
}

var (
	logger   atomic.Pointer[slog.Logger]
	minLevel = new(slog.LevelVar) // defaults to Info
	quiet    atomic.Bool
)

func init() {
	logger.Store(slog.New(&splitHandler{
		out: slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: minLevel}),
		err: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}))
}

// SetOutput redirects all log output to w, primarily for tests. Quiet mode
// is cleared so every level reaches the writer.
func SetOutput(w io.Writer) {
	quiet.Store(false)
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: minLevel})))
}

// SetLevel sets the minimum level emitted to stdout. Warnings and errors are
// always emitted.
func SetLevel(l slog.Level) { minLevel.Set(l) }

// LevelFromString maps a configuration string to a log level. Unknown values
// fall back to Info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "notice":
		return LevelNotice
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetQuiet enables or disables quiet mode. In quiet mode, notice and info
// messages are suppressed.
func SetQuiet(q bool) { quiet.Store(q) }

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool { return quiet.Load() }

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Info logs an informational message. Suppressed in quiet mode.
func Info(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	logger.Load().Info(msg, args...)
}

// Notice logs per-item progress. Suppressed in quiet mode.
func Notice(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	logger.Load().Log(context.Background(), LevelNotice, msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}
