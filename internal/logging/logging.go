// Package logging builds the slog loggers used by both binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the server log output.
type Options struct {
	Level string
	// Format is "json" (default) or "text".
	Format string
	// File, when set, receives a copy of every record.
	File string
}

// New creates the server logger writing to stderr and optionally to
// opts.File, and installs it as the slog default. Every record carries
// service=emulsion. The returned cleanup closes the log file; callers must
// defer it.
func New(opts Options) (*slog.Logger, func(), error) {
	writers := []io.Writer{os.Stderr}
	cleanup := func() {}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	logger := slog.New(newHandler(io.MultiWriter(writers...), opts)).With("service", "emulsion")
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// NewText creates a human-readable logger writing to w, for the
// command-line client. It does not touch the slog default.
func NewText(level string, w io.Writer) *slog.Logger {
	return slog.New(newHandler(w, Options{Level: level, Format: "text"}))
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	ho := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "text") {
		return slog.NewTextHandler(w, ho)
	}
	return slog.NewJSONHandler(w, ho)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
