package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"video-library/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
// The rest covers SQLite's page cache, goroutine stacks and the runtime.
const DefaultRatio = 0.85

// Source names where a heap limit came from.
type Source string

const (
	SourceNone        Source = "none"
	SourceGoMemLimit  Source = "GOMEMLIMIT"
	SourceMemoryLimit Source = "MEMORY_LIMIT"
)

// Limit describes the heap limit applied at startup.
type Limit struct {
	Source Source
	// Container is the container limit in bytes, 0 when unknown.
	Container int64
	// Heap is the applied heap limit in bytes, 0 when none was set.
	Heap  int64
	Ratio float64
}

// Configured reports whether a heap limit is in effect.
func (l Limit) Configured() bool {
	return l.Heap > 0
}

// ConfigureFromEnv applies a heap limit from the environment:
//
//   - GOMEMLIMIT, when set, is left to the runtime and only reported.
//   - MEMORY_LIMIT is the container limit in bytes, usually from the
//     Kubernetes Downward API.
//   - MEMORY_RATIO overrides DefaultRatio, in (0, 1].
//
// Call it before the database loads the library.
func ConfigureFromEnv() Limit {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		limit := Limit{Source: SourceGoMemLimit}
		// A negative input reads the current limit without changing it.
		if current := debug.SetMemoryLimit(-1); current > 0 && current < math.MaxInt64 {
			limit.Heap = current
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return limit
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, heap limit not configured")
		return Limit{Source: SourceNone}
	}
	container, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Limit{Source: SourceNone}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	heap := int64(float64(container) * ratio)
	debug.SetMemoryLimit(heap)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(heap), ratio*100, FormatBytes(container))
	return Limit{Source: SourceMemoryLimit, Container: container, Heap: heap, Ratio: ratio}
}

func parseRatio(s string) float64 {
	if s == "" {
		return DefaultRatio
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", s, DefaultRatio)
		return DefaultRatio
	}
	return r
}

// FormatBytes renders b with binary units, e.g. "1.5 GiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
