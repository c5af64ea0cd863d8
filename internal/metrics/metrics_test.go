package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type staticStats Stats

func (s staticStats) Stats() Stats { return Stats(s) }

func TestCollectorCollect(t *testing.T) {
	c := NewCollector(staticStats{Readable: 3, Unreadable: 2, Discarded: 1, PropertyTypes: 4, Viewports: 5}, time.Hour)
	c.collect()

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"readable", testutil.ToFloat64(LibraryVideosTotal.WithLabelValues("readable")), 3},
		{"unreadable", testutil.ToFloat64(LibraryVideosTotal.WithLabelValues("unreadable")), 2},
		{"discarded", testutil.ToFloat64(LibraryVideosTotal.WithLabelValues("discarded")), 1},
		{"property types", testutil.ToFloat64(LibraryPropertyTypes), 4},
		{"viewports", testutil.ToFloat64(ViewportsActive), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestCollectorWithoutProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	// Must not panic.
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(staticStats{Readable: 1}, 10*time.Millisecond)
	c.Start()
	time.Sleep(25 * time.Millisecond)
	c.Stop()
	c.Stop()

	if got := testutil.ToFloat64(LibraryVideosTotal.WithLabelValues("readable")); got != 1 {
		t.Errorf("readable = %v, want 1", got)
	}
}

func TestPipelineObserver(t *testing.T) {
	InitializeMetrics()
	obs := NewPipelineObserver()

	before := testutil.ToFloat64(PipelineStageRuns.WithLabelValues("search"))
	obs.ObserveStageRun("search", 0.002)
	if got := testutil.ToFloat64(PipelineStageRuns.WithLabelValues("search")); got != before+1 {
		t.Errorf("Expected search runs %v, got %v", before+1, got)
	}

	deletions := testutil.ToFloat64(PipelineCacheDeletions.WithLabelValues("sort"))
	obs.ObserveCacheDeletion("sort")
	if got := testutil.ToFloat64(PipelineCacheDeletions.WithLabelValues("sort")); got != deletions+1 {
		t.Errorf("Expected sort deletions %v, got %v", deletions+1, got)
	}

	obs.ObserveViewSize(42)
	if got := testutil.ToFloat64(ViewportViewSize); got != 42 {
		t.Errorf("Expected view size 42, got %v", got)
	}
}
