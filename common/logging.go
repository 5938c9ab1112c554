package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the leveled logging surface used throughout the engine. Debug
// output is gated behind an explicit toggle so hot paths can skip argument
// formatting when it is off.
type Logger interface {
	// DebugEnabled reports whether Debugf output is currently emitted.
	DebugEnabled() bool

	// SetDebug toggles Debugf output.
	SetDebug(enabled bool)

	// Debugf logs a formatted debug message when debug output is enabled.
	Debugf(format string, args ...any)

	// Infof logs a formatted informational message.
	Infof(format string, args ...any)

	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)

	// Errorf logs a formatted error message to the error stream.
	Errorf(format string, args ...any)
}

var _ Logger = &defaultLogger{}
var _ Logger = nopLogger{}

type defaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// NewLogger creates a Logger writing informational output to stdout and
// errors to stderr, each line tagged with the given prefix and a
// microsecond timestamp. Debug output starts disabled.
//
// Parameters:
//   - prefix: short component tag prepended to every line
//
// Returns:
//   - Logger: the configured logger
func NewLogger(prefix string) Logger {
	return newLoggerTo(prefix, os.Stdout, os.Stderr)
}

func newLoggerTo(prefix string, out, err io.Writer) Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &defaultLogger{
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(err, "", flags),
	}
}

func (l *defaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *defaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = enabled
}

func (l *defaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *defaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *defaultLogger) Warnf(format string, args ...any) {
	l.out.Print(l.prefixf("WARN", format, args...))
}

func (l *defaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

func (l *defaultLogger) prefixf(level, format string, args ...any) string {
	return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

// NopLogger returns a Logger that discards everything, for components that
// were built without an explicit logger.
//
// Returns:
//   - Logger: the no-op logger
func NopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
