// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Output goes through a shared logrus logger so lines carry a timestamp,
// a level and, when requested, JSON structure.
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("starting server on %s", addr)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var std = logrus.New()

func init() {
	// Logs go to stderr so they never mix with a price printed on stdout.
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	SetVerbosity(int(Info))
}

// SetVerbosity sets the global logging verbosity.
// Values outside Error..Trace are clamped.
func SetVerbosity(v int) {
	switch {
	case v <= int(Error):
		std.SetLevel(logrus.ErrorLevel)
	case v == int(Info):
		std.SetLevel(logrus.InfoLevel)
	case v == int(Debug):
		std.SetLevel(logrus.DebugLevel)
	default:
		std.SetLevel(logrus.TraceLevel)
	}
}

// SetFormat switches between "text" (default) and "json" output.
func SetFormat(format string) {
	if format == "json" {
		std.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields map[string]any) *logrus.Entry {
	return std.WithFields(logrus.Fields(fields))
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	std.Errorf(format, args...)
}

// Warnf logs a recoverable problem. It is shown at Info verbosity and above.
func Warnf(format string, args ...any) {
	std.Warnf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	std.Tracef(format, args...)
}
