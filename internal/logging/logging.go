// Package logging configures structured logging with Go's slog package.
package logging

import (
	"log/slog"
	"os"
)

// Format selects the log output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init replaces the package logger. debug enables debug-level records.
func Init(debug bool, format Format) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	defaultLogger = slog.New(h)
	slog.SetDefault(defaultLogger)
}

// Logger returns the configured logger.
func Logger() *slog.Logger { return defaultLogger }

// Debug logs at debug level with key/value attributes.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Error logs at error level with key/value attributes.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
