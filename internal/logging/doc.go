// Package logging assembles structured slog loggers and formatting helpers used
// across jellyclean components.
//
// It owns the console and JSON handlers, centralizes level and output plumbing
// (including the rotated log file sink), and exposes attribute helpers with
// standardized keys so every component emits lines with the same shape. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
