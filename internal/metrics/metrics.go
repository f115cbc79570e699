// Package metrics exposes Prometheus collectors for the site service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	previewRequestsTotal       *prometheus.CounterVec
	pipelineRunsTotal          *prometheus.CounterVec
	pipelineRunDurationSeconds prometheus.Histogram
	announceDispatchesTotal    *prometheus.CounterVec
	intakeSubmissionsTotal     *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		previewRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_requests_total",
				Help: "Total preview lookups, labeled by outcome (crawler, redirect, not_found, error).",
			},
			[]string{"outcome"},
		)

		pipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total content generation runs, labeled by status (published, failed).",
			},
			[]string{"status"},
		)

		pipelineRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_run_duration_seconds",
				Help:    "Histogram of full generation run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		)

		announceDispatchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "announce_dispatches_total",
				Help: "Total announce dispatches, labeled by channel and status.",
			},
			[]string{"channel", "status"},
		)

		intakeSubmissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Total form submissions, labeled by form and status.",
			},
			[]string{"form", "status"},
		)
	})
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePreview records the outcome of a preview lookup.
func ObservePreview(outcome string) {
	previewRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObservePipelineRun records a completed generation run.
func ObservePipelineRun(status string, duration time.Duration) {
	pipelineRunsTotal.WithLabelValues(status).Inc()
	pipelineRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveAnnounce records one announce dispatch.
func ObserveAnnounce(channel string, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	announceDispatchesTotal.WithLabelValues(channel, status).Inc()
}

// ObserveIntake records one form submission outcome.
func ObserveIntake(form, status string) {
	intakeSubmissionsTotal.WithLabelValues(form, status).Inc()
}
