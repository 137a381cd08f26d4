package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"songshift/internal/config"
)

// LogFileName is the file written under paths.log_dir when file logging is enabled.
const LogFileName = "songshift.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives console or JSON output; defaults to stderr.
	Writer io.Writer
	// FilePath, when set, additionally receives JSON lines.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handler = TeeHandler(handler, newJSONHandler(file, levelVar, true))
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults. debug
// forces the debug level regardless of the configured level.
func NewFromConfig(cfg *config.Config, debug bool) (*slog.Logger, error) {
	return New(OptionsFromConfig(cfg, debug))
}

// OptionsFromConfig maps the [logging] section onto logger options.
func OptionsFromConfig(cfg *config.Config, debug bool) Options {
	opts := Options{Level: "info", Format: "console"}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
		if cfg.Logging.File && cfg.Paths.LogDir != "" {
			opts.FilePath = filepath.Join(cfg.Paths.LogDir, LogFileName)
		}
	}
	if debug {
		opts.Level = "debug"
	}
	return opts
}

func parseLevel(level string) slog.Level {
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

func openLogFile(path string) (io.Writer, error) {
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

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
