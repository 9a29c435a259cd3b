// Package logging configures the process-wide slog logger. Two output
// formats are supported: a compact console format for interactive use and
// JSON for log files and machine consumption.
package logging
