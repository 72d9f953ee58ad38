// Package logging builds the slog logger used inside the bridge.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/blacktop/go-llmbridge/internal/config"
)

// ParseLevel maps a config level name to a slog level. Unknown names are warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a logger for cfg and a closer for any file it opened.
// If the log file cannot be opened it falls back to stderr.
func New(cfg config.LogConfig) (*slog.Logger, func() error) {
	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := openFile(cfg.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "llmbridge: %v, logging to stderr\n", err)
		} else {
			w, closer = f, f.Close
		}
	}
	return NewWriter(w, cfg), closer
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: false, // Keep it clean inside the host's stderr
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", "llmbridge")
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
