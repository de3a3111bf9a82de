package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Init configures the process-wide logger writing to w.
// The first call wins; later calls return the already initialized instance.
func Init(level string, w io.Writer) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, w)
	})
	return globalLogger
}

// Get returns the process-wide logger, initializing it on stdout at level
// if nothing configured it yet.
func Get(level string) *Logger {
	return Init(level, os.Stdout)
}

// New builds a standalone logger writing to w, outside the singleton.
func New(level string, w io.Writer) *Logger {
	return newZapLogger(level, w)
}

// Nop returns a logger that discards everything. Used by tests and
// components constructed without a logger.
func Nop() *Logger {
	return newZapLogger(ErrorLevel, io.Discard)
}

// OpenFile opens (or creates) an append-only log file.
// The terminal panel logs there so its screen stays intact.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	return f, nil
}
