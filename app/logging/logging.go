package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and is used for per-item filter decisions.
const LevelTrace = slog.Level(-8)

const logFileName = "rss-fetch.log"

type Options struct {
	Level  slog.Level
	Format string // text or json
	Dir    string // optional, enables file output next to stdout
	Output io.Writer
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

// New builds a logger from explicit options. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(handler), closer, nil
}

func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard is a logger for tests and callers that do not care about output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
