// Package logging sets up the structured log file. The dashboard owns the
// terminal, so logs never go to stderr while it runs.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config contains logging configuration
type Config struct {
	Level    string // debug, info, warn, error
	FilePath string // empty discards everything
}

// Logger is the configured logger plus its adjustable level
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// Setup opens the log file and builds a text logger writing to it. The
// standard log package is redirected to the same file so library output
// does not corrupt the screen.
func Setup(cfg Config) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	var (
		out  io.Writer = io.Discard
		file *os.File
	)
	if cfg.FilePath != "" {
		if dir := filepath.Dir(cfg.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, file = f, f
	}
	log.SetOutput(out)

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), level: level, file: file}, nil
}

// SetLevel changes the minimum level of every logger derived from l
func (l *Logger) SetLevel(s string) {
	l.level.Set(ParseLevel(s))
}

// Level returns the current minimum level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	_ = l.file.Sync()
	return l.file.Close()
}

// ParseLevel converts a level name, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
