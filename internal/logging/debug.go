package logging

import (
	"fmt"
	"io"
	"os"
)

// DebugEnv turns on debug output when set to any non-empty value
const DebugEnv = "TS_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TS_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf prints a formatted debug message to stderr only if debug mode is enabled
func Debugf(format string, args ...any) {
	Fdebugf(os.Stderr, format, args...)
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...any) {
	Fdebugln(os.Stderr, args...)
}

// Fdebugf is Debugf writing to w
func Fdebugf(w io.Writer, format string, args ...any) {
	if DebugEnabled() {
		fmt.Fprintf(w, format, args...)
	}
}

// Fdebugln is Debugln writing to w
func Fdebugln(w io.Writer, args ...any) {
	if DebugEnabled() {
		fmt.Fprintln(w, args...)
	}
}
