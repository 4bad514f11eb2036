// Package pkg provides shared utilities for the softvga display stack.
//
// This package contains common functionality used across the mode, stream,
// and bus packages, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for transfer and stream faults
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with display-stack context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentStream, "stream enabled", "buffers", 4)
//
// # Errors
//
// Common stream errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrModeRejected) {
//	    // Fall back to a lower resolution
//	}
package pkg
