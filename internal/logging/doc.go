// Package logging provides the leveled logger shared by the video library
// server, the viewctl CLI and the viewport pipeline.
//
// Levels, in increasing severity:
//   - DEBUG: stage recomputes, index build progress
//   - INFO: lifecycle messages and user-facing notices (sort splits)
//   - WARN: recoverable misconfiguration
//   - ERROR: failed operations
//   - FATAL: unrecoverable startup failures (exits the process)
//
// The initial level comes from the LOG_LEVEL environment variable, or DEBUG=true.
// SetLevel overrides it at runtime.
package logging
