package metrics

// Stage names used as label values. They match viewport stage names.
var stageNames = []string{"source", "grouping", "classifier", "group", "search", "sort"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, stage := range stageNames {
		PipelineStageRuns.WithLabelValues(stage)
		PipelineStageDuration.WithLabelValues(stage)
		PipelineCacheDeletions.WithLabelValues(stage)
	}

	for _, state := range []string{"readable", "unreadable", "discarded"} {
		LibraryVideosTotal.WithLabelValues(state)
	}

	for _, op := range []string{"initialize_schema", "load_videos", "add_video", "delete_video",
		"set_property", "create_prop_type", "update_video", "save_index", "load_index"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
