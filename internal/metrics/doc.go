// Package metrics provides Prometheus instrumentation for the video library.
//
// All metrics are prefixed with "video_library_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, route and status
//   - HTTPRequestDuration: request duration by method and route
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
//   - DBQueryTotal: queries by operation and status
//   - DBQueryDuration: query duration by operation
//   - DBConnectionsOpen: open SQLite connections
//
// ## Pipeline Metrics
//
// Recorded through the viewport.Observer returned by NewPipelineObserver:
//   - PipelineStageRuns: stage recomputations by stage
//   - PipelineStageDuration: recomputation time by stage
//   - PipelineCacheDeletions: in-place cache deletions by stage
//   - ViewportViewSize: size of the last materialized view
//
// ## Index Metrics
//
//   - IndexBuildDuration: time spent in Indexer.Build
//   - IndexVideosAdded: videos added to term indexes
//
// ## Library Metrics
//
// Updated periodically by Collector:
//   - LibraryVideosTotal: videos by state (readable, unreadable, discarded)
//   - LibraryPropertyTypes: declared property types
//   - ViewportsActive: open viewport sessions
package metrics
