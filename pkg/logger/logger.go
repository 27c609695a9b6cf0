// Package logger provides the process-wide structured logger used across
// pgtc's CLI, introspection, and codegen packages.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

var defaultLogger *log.Logger

func init() {
	defaultLogger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}

// SetOutput redirects the logger to w, e.g. to capture output.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetLevel sets the log level
func SetLevel(level string) {
	switch level {
	case "debug":
		defaultLogger.SetLevel(log.DebugLevel)
	case "info":
		defaultLogger.SetLevel(log.InfoLevel)
	case "warn":
		defaultLogger.SetLevel(log.WarnLevel)
	case "error":
		defaultLogger.SetLevel(log.ErrorLevel)
	}
}

// IsTTY reports whether w is a terminal, used to decide whether to colorize
// CLI diagnostics (internal/ui) independently of this logger's own output.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs at the "debug" level
func Debug(msg string, keyvals ...interface{}) {
	defaultLogger.Debug(msg, keyvals...)
}

// Info logs at the "info" level
func Info(msg string, keyvals ...interface{}) {
	defaultLogger.Info(msg, keyvals...)
}

// Warn logs at the "warn" level
func Warn(msg string, keyvals ...interface{}) {
	defaultLogger.Warn(msg, keyvals...)
}

// Error logs at the "error" level
func Error(msg string, keyvals ...interface{}) {
	defaultLogger.Error(msg, keyvals...)
}

// Fatal logs and exits
func Fatal(msg string, keyvals ...interface{}) {
	defaultLogger.Fatal(msg, keyvals...)
}

// With returns a logger with additional context, e.g. With("file", path, "query", name).
func With(keyvals ...interface{}) *log.Logger {
	return defaultLogger.With(keyvals...)
}

// ForQuery returns a logger scoped to one file/query pair, carrying the
// same "file"/"query" keys internal/introspect attaches to its warnings.
func ForQuery(file, query string) *log.Logger {
	return defaultLogger.With("file", file, "query", query)
}
