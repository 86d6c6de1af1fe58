package types

import (
	"log"
	"os"
)

// Logger is the leveled logging contract threaded through the engine, kept
// narrow enough that any Printf-style logger can satisfy it without pulling
// in a specific third-party logging library.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// stdLogger is the default Logger, backed by the standard library.
type stdLogger struct {
	*log.Logger
}

// DefaultLogger returns a Logger that writes leveled, prefixed lines to
// stderr.
func DefaultLogger() Logger {
	return &stdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *stdLogger) Debugf(format string, args ...any) { l.Printf("DEBUG "+format, args...) }
func (l *stdLogger) Infof(format string, args ...any)  { l.Printf("INFO  "+format, args...) }
func (l *stdLogger) Warnf(format string, args ...any)  { l.Printf("WARN  "+format, args...) }
func (l *stdLogger) Errorf(format string, args ...any) { l.Printf("ERROR "+format, args...) }

// NopLogger discards everything; useful in tests that don't want log noise.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
