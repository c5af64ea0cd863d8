// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - VIEWPORT_CONFIG: Optional TOML file with the parameters new viewport
//     sessions start with, see [ViewportDefaults]
//
// The database directory is created when missing and must be writable.
//
// Build-time variables (Version, Commit, BuildTime) are set with -ldflags
// and reported by [GetBuildInfo] and the /version endpoint.
//
// The Log* functions print the sectioned startup and shutdown output of the
// server; route listing happens only at debug level.
package startup
