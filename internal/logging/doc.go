// Package logging assembles structured slog loggers and formatting helpers used
// across sheaf commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes a component-tagging helper so subsystems emit log lines
// with a consistent shape. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing guarantees as the rest of the tool.
package logging
