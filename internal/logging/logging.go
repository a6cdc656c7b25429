package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

var (
	// Logger is the structured logger used by the Debug/Info/Warn/Error helpers.
	Logger = slog.New(log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel}))

	// Verbose is true when debug output was requested.
	Verbose bool
)

// Setup configures the package logger. Output goes to w (stderr when nil),
// as JSON when jsonOutput is set and as styled text otherwise.
func Setup(verbose, jsonOutput bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	Verbose = verbose

	opts := log.Options{
		Level:  log.InfoLevel,
		Prefix: "peel",
	}
	if verbose {
		opts.Level = log.DebugLevel
		opts.ReportTimestamp = true
	}
	if jsonOutput {
		opts.Formatter = log.JSONFormatter
	}

	Logger = slog.New(log.NewWithOptions(w, opts))
}

// Debug logs at debug level; only visible with --verbose.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger that adds args to every record.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
