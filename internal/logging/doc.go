// Package logging provides logging utilities for peel.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (slog backed by charmbracelet/log)
//   - User output: Formatted messages for end users (styled with lipgloss)
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("probing runtime", "kind", "docker")
//	logging.Warn("daemon query failed", "cmd", "podman info")
//
// Setup(verbose, json, w) selects the level and formatter. Probe steps log at
// debug level, so they only show with --verbose.
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Inspecting image %s", ref)
//	logging.UserSuccess("Report available at %s", url)
//	logging.UserWarning("Direct layer access reads from %s", root)
//	logging.UserError("%v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
