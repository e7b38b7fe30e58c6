package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	IngestsTotal       uint64
	IngestsDegraded    uint64
	StorageDegraded    uint64
	OCRDegraded        uint64
	StartTime          time.Time

	mu       sync.Mutex
	analyses map[string]uint64 // "<kind>.<source>"
}

var globalMetrics = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{StartTime: time.Now(), analyses: map[string]uint64{}}
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// PipelineRecorder feeds ingestion and analysis outcomes into the global metrics.
type PipelineRecorder struct{}

func (PipelineRecorder) Ingested(degraded []string) {
	atomic.AddUint64(&globalMetrics.IngestsTotal, 1)
	if len(degraded) > 0 {
		atomic.AddUint64(&globalMetrics.IngestsDegraded, 1)
	}
	for _, stage := range degraded {
		switch stage {
		case "storage":
			atomic.AddUint64(&globalMetrics.StorageDegraded, 1)
		case "ocr":
			atomic.AddUint64(&globalMetrics.OCRDegraded, 1)
		}
	}
}

func (PipelineRecorder) Analyzed(kind, source string) {
	globalMetrics.mu.Lock()
	globalMetrics.analyses[kind+"."+source]++
	globalMetrics.mu.Unlock()
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	globalMetrics.mu.Lock()
	analyses := make(map[string]uint64, len(globalMetrics.analyses))
	for k, v := range globalMetrics.analyses {
		analyses[k] = v
	}
	globalMetrics.mu.Unlock()

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"ingests_total":        atomic.LoadUint64(&globalMetrics.IngestsTotal),
		"ingests_degraded":     atomic.LoadUint64(&globalMetrics.IngestsDegraded),
		"storage_degraded":     atomic.LoadUint64(&globalMetrics.StorageDegraded),
		"ocr_degraded":         atomic.LoadUint64(&globalMetrics.OCRDegraded),
		"analyses":             analyses,
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
