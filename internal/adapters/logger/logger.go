package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/monorun/internal/core/ports"
)

// Format selects the slog handler used by the Logger.
type Format string

// Supported formats.
const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
	format Format
	output io.Writer
	level  *slog.LevelVar
}

// New creates a Logger that writes pretty output to stderr at info level.
func New() *Logger {
	l := &Logger{
		format: FormatPretty,
		output: os.Stderr,
		level:  &slog.LevelVar{},
	}
	l.rebuild()
	return l
}

// SetOutput updates the logger's output destination, preserving the format.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetFormat switches between JSON and pretty logging.
func (l *Logger) SetFormat(f Format) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.format = f
	l.rebuild()
}

// SetVerbose enables debug records.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(slog.LevelInfo)
}

// rebuild must be called with l.mu held.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}

	var handler slog.Handler
	if l.format == FormatJSON {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

func (l *Logger) current() (*slog.Logger, Format) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger, l.format
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	lg, _ := l.current()
	lg.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	lg, _ := l.current()
	lg.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	lg, _ := l.current()
	lg.Warn(msg)
}

// Error logs err with its cause chain.
func (l *Logger) Error(err error) {
	lg, format := l.current()
	logError(lg, format, err)
}

func logError(lg *slog.Logger, format Format, err error) {
	if err == nil {
		return
	}

	if format == FormatJSON {
		lg.Error("operation failed", "error", err.Error())
		return
	}

	lg.Error(formatErrorEntries(collectErrorEntries(err)))
}
