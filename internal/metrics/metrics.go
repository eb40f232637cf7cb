// Package metrics exports cleanup results in the node_exporter textfile
// format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

const namespace = "reclaim"

// Recorder collects session steps into a private registry.
type Recorder struct {
	registry *prometheus.Registry
	now      func() time.Time

	FreedBytes      *prometheus.GaugeVec
	MatchedBytes    *prometheus.GaugeVec
	RemovalFailures *prometheus.CounterVec
	LastRun         prometheus.Gauge
}

var _ session.Observer = (*Recorder)(nil)

// NewRecorder returns a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		now:      time.Now,

		FreedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "freed_bytes",
			Help:      "Bytes freed by the last run, by category.",
		}, []string{"category"}),

		MatchedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matched_bytes",
			Help:      "Bytes matched before cleaning, by category.",
		}, []string{"category"}),

		RemovalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removal_failures_total",
			Help:      "Entries that could not be removed, by category.",
		}, []string{"category"}),

		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.FreedBytes, r.MatchedBytes, r.RemovalFailures, r.LastRun)
	return r
}

// ObserveStep implements session.Observer. Repeated steps for one category
// add up.
func (r *Recorder) ObserveStep(s session.Step) {
	r.FreedBytes.WithLabelValues(s.Key).Add(float64(s.Freed))
	if s.Key != session.JournalKey {
		r.MatchedBytes.WithLabelValues(s.Key).Set(float64(s.Matched))
		r.RemovalFailures.WithLabelValues(s.Key).Add(float64(s.Failures))
	}
}

// Registry exposes the collectors for tests and other exporters.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile stamps the run time and writes every metric to path. The
// file is replaced atomically so node_exporter never reads a partial one.
func (r *Recorder) WriteTextfile(path string) error {
	r.LastRun.Set(float64(r.now().Unix()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
