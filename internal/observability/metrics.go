package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emoscribe_runs_total",
		Help: "Total number of pipeline runs",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "emoscribe_run_duration_seconds",
		Help:    "End-to-end duration of a pipeline run in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	// Transcription job metrics
	jobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emoscribe_transcription_jobs_total",
		Help: "Total number of transcription jobs submitted",
	}, []string{"status"})

	pollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emoscribe_poll_cycles_total",
		Help: "Total number of job status polls issued",
	})

	// Enrichment metrics
	segmentsEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emoscribe_segments_enriched_total",
		Help: "Total number of sentences enriched",
	}, []string{"outcome"})

	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "emoscribe_stage_latency_seconds",
		Help:    "Latency of individual pipeline stages in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"stage"})

	// Persistence metrics
	destinationWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emoscribe_destination_writes_total",
		Help: "Total number of destination writes attempted",
	}, []string{"destination", "status"})
)

// RecordRun records the outcome and duration of a pipeline run.
func RecordRun(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(duration.Seconds())
}

// RecordJobSubmitted records a transcription job submission.
func RecordJobSubmitted(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	jobsSubmitted.WithLabelValues(status).Inc()
}

// RecordPollCycle records a single job status poll.
func RecordPollCycle() {
	pollCycles.Inc()
}

// RecordSegment records one enriched sentence; outcome is "ok" or "degraded".
func RecordSegment(outcome string) {
	segmentsEnriched.WithLabelValues(outcome).Inc()
}

// ObserveStage records the latency of one pipeline stage.
func ObserveStage(stage string, duration time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordDestinationWrite records one destination write attempt.
func RecordDestinationWrite(destination string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	destinationWrites.WithLabelValues(destination, status).Inc()
}
