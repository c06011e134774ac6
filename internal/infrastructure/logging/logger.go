package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

const serviceName = "graylogic-node"

// Logger is a *slog.Logger that may own its output file.
//
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New builds the node logger from the logging section of config.yaml.
//
// Output may be stdout, stderr, or a path such as the board's serial
// console (/dev/ttyS0). A path that cannot be opened falls back to stderr
// with a note on stderr. Every entry carries service and version.
func New(cfg config.LoggingConfig, version string) *Logger {
	w, closer := openOutput(cfg.Output)
	return newLogger(w, closer, cfg, version)
}

func newLogger(w io.Writer, closer io.Closer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(h).With("service", serviceName, "version", version),
		closer: closer,
	}
}

func openOutput(output string) (io.Writer, io.Closer) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // operator-chosen log path
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v; using stderr\n", err)
		return os.Stderr, nil
	}
	return f, f
}

// parseLevel maps debug, info, warn (or warning) and error, in any case,
// to slog levels. Anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a child logger carrying args on every entry. The child does
// not own the output; Close the parent.
//
//	log := logger.With("component", "loop")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Close releases the output file, if the logger opened one.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Default is the text-to-stdout logger used before config is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "text"}, "dev")
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}
