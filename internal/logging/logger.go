package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tilestats/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives every record. Defaults to os.Stderr.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	// A tee into a log file is not a terminal, so it never gets colour codes.
	colorize := shouldColorize(writer)
	addSource := level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(writer, levelVar, addSource, colorize)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config values. Non-empty
// level and format arguments override the configured ones. When logging.file
// is set every record is copied there; the returned close function releases
// that file and must be called once the logger is no longer used.
func NewFromConfig(cfg *config.Config, w io.Writer, level, format string) (*slog.Logger, func() error, error) {
	noClose := func() error { return nil }
	opts := Options{Level: "info", Format: "console", Writer: w}
	var filePath string
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
		filePath = strings.TrimSpace(cfg.Logging.File)
	}
	if strings.TrimSpace(level) != "" {
		opts.Level = level
	}
	if strings.TrimSpace(format) != "" {
		opts.Format = format
	}
	if filePath == "" {
		logger, err := New(opts)
		if err != nil {
			return nil, noClose, err
		}
		return logger, noClose, nil
	}

	file, err := openLogFile(filePath)
	if err != nil {
		return nil, noClose, err
	}
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	opts.Writer = io.MultiWriter(opts.Writer, file)
	logger, err := New(opts)
	if err != nil {
		_ = file.Close()
		return nil, noClose, err
	}
	return logger, file.Close, nil
}

// ParseLevel maps a level name onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level: unsupported value %q", level)
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
