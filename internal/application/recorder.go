package application

// Recorder receives pipeline outcomes for metrics.
type Recorder interface {
	// Ingested is called once per persisted record with the stages that degraded.
	Ingested(degraded []string)
	// Analyzed is called once per analysis result.
	Analyzed(kind, source string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Ingested([]string)       {}
func (NopRecorder) Analyzed(string, string) {}
