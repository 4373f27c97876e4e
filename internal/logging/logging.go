// Package logging provides JSON-lines structured logging with file rotation.
//
// Records look like:
//
//	{"ts":"2025-03-01T10:30:00Z","level":"INFO","msg":"model call finished","id":"6f1c...","provider":"process","latency_ms":8421}
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Stderr is the File value that sends logs to standard error.
const Stderr = "-"

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	File       string // log file path, "-" for stderr
	MaxSizeMB  int    // max size in MB before rotation
	MaxBackups int    // old files to retain
	MaxAgeDays int    // max age of old files
	Compress   bool   // gzip rotated files
}

// New creates a JSON-lines logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Setup builds the process logger from cfg and installs it as the slog
// default. The returned cleanup closes the log file.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	var writer io.Writer
	cleanup := func() error { return nil }

	if cfg.File == "" || cfg.File == Stderr {
		writer = os.Stderr
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		writer = lj
		cleanup = lj.Close
	}

	logger := New(writer, cfg.Level)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
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
