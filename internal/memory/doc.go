// Package memory derives the Go heap limit from the container memory limit.
//
// The viewport caches of idle sessions can grow with the library, so the
// server sets GOMEMLIMIT below the container limit and lets the collector
// work harder before the kernel OOM killer would.
//
// # Configuration
//
//   - GOMEMLIMIT: when set, it is left alone and reported as the source.
//   - MEMORY_LIMIT: container limit in bytes.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the heap (default 0.85).
package memory
