// Package metrics records validation run metrics in a Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abdidvp/dataval/internal/domain"
)

// Recorder holds the metrics of one or more validation runs.
type Recorder struct {
	registry *prometheus.Registry

	FilesValidated *prometheus.CounterVec
	IssuesTotal    *prometheus.CounterVec
	RunDuration    prometheus.Gauge
	LastRun        prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		FilesValidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataval_files_validated_total",
				Help: "Total number of files validated",
			},
			[]string{"status"},
		),
		IssuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataval_issues_total",
				Help: "Total number of issues found",
			},
			[]string{"type", "severity"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataval_run_duration_seconds",
			Help: "Duration of the last validation run in seconds",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataval_last_run_timestamp_seconds",
			Help: "Unix time of the last validation run",
		}),
	}
	r.registry.MustRegister(r.FilesValidated, r.IssuesTotal, r.RunDuration, r.LastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe adds the results of one run.
func (r *Recorder) Observe(results []domain.Result, elapsed time.Duration) {
	for _, res := range results {
		status := "passed"
		if !res.Report.Passed() {
			status = "failed"
		}
		r.FilesValidated.WithLabelValues(status).Inc()
		for _, i := range res.Report.Issues {
			r.IssuesTotal.WithLabelValues(string(i.Type), string(i.Severity)).Inc()
		}
	}
	r.RunDuration.Set(elapsed.Seconds())
	r.LastRun.SetToCurrentTime()
}

// WriteTextfile atomically writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
