// Package main provides the entry point for the video library server.
//
// The server keeps a collection of videos in SQLite and lets clients open
// viewports on it: parameterized views that select videos by flags, group
// them by a field or property, drill into property values, filter by text
// and sort. Each viewport caches every intermediate result and recomputes
// only what a parameter change invalidates.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads environment variables and validates the
//     database directory
//  2. Database Initialization: Opens SQLite, loads videos and property types
//     into memory and restores the saved term index
//  3. HTTP Server Setup: Registers the viewport API and middleware
//  4. Graceful Shutdown: Handles SIGINT/SIGTERM, closes sessions, saves the
//     term index and closes the database
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Viewport session API under /api/viewports
//     - Video deletion under /api/videos
//     - Health and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - VIEWPORT_CONFIG: TOML file with default viewport parameters
//   - MEMORY_LIMIT: Container memory limit in bytes, used to set GOMEMLIMIT
//   - MEMORY_RATIO: Share of MEMORY_LIMIT given to the Go heap (default: 0.85)
//
// The collection itself is managed with the viewctl command.
package main
