package metrics

import "video-library/internal/viewport"

// pipelineObserver implements viewport.Observer using the Prometheus
// metrics declared in this package.
type pipelineObserver struct{}

// NewPipelineObserver creates an observer that records viewport pipeline
// activity into the collectors declared in metrics.go.
func NewPipelineObserver() viewport.Observer {
	return pipelineObserver{}
}

func (pipelineObserver) ObserveStageRun(stage string, durationSeconds float64) {
	PipelineStageRuns.WithLabelValues(stage).Inc()
	PipelineStageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

func (pipelineObserver) ObserveCacheDeletion(stage string) {
	PipelineCacheDeletions.WithLabelValues(stage).Inc()
}

func (pipelineObserver) ObserveIndexBuild(durationSeconds float64, added int) {
	IndexBuildDuration.Observe(durationSeconds)
	IndexVideosAdded.Add(float64(added))
}

func (pipelineObserver) ObserveViewSize(size int) {
	ViewportViewSize.Set(float64(size))
}
