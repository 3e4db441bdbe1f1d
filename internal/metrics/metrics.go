// Package metrics records run timings and row counts. The Prometheus
// recorder keeps its own registry and can dump it to a node-exporter style
// textfile at the end of a run.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"macroagg/internal/etlerr"
)

// Recorder is what the pipeline reports to.
type Recorder interface {
	ObserveFetch(dataset string, d time.Duration, err error)
	ObserveStage(stage string, d time.Duration)
	SetRows(stage, dataset string, n int)
	IncError(kind, stage string)
}

// Noop discards everything.
type Noop struct{}

func (Noop) ObserveFetch(string, time.Duration, error) {}
func (Noop) ObserveStage(string, time.Duration)        {}
func (Noop) SetRows(string, string, int)               {}
func (Noop) IncError(string, string)                   {}

// Prometheus is a Recorder backed by a private registry.
type Prometheus struct {
	reg      *prometheus.Registry
	fetch    *prometheus.HistogramVec
	fetchErr *prometheus.CounterVec
	stage    *prometheus.HistogramVec
	rows     *prometheus.GaugeVec
	errors   *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		reg: prometheus.NewRegistry(),
		fetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "macroagg",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching one dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"dataset"}),
		fetchErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "macroagg",
			Name:      "fetch_failures_total",
			Help:      "Failed dataset fetches.",
		}, []string{"dataset", "kind"}),
		stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "macroagg",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "macroagg",
			Name:      "rows",
			Help:      "Rows produced per stage and dataset.",
		}, []string{"stage", "dataset"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "macroagg",
			Name:      "errors_total",
			Help:      "Errors by kind and stage.",
		}, []string{"kind", "stage"}),
	}
	p.reg.MustRegister(p.fetch, p.fetchErr, p.stage, p.rows, p.errors)
	return p
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

func (p *Prometheus) ObserveFetch(dataset string, d time.Duration, err error) {
	p.fetch.WithLabelValues(dataset).Observe(d.Seconds())
	if err != nil {
		p.fetchErr.WithLabelValues(dataset, etlerr.Kind(err)).Inc()
	}
}

func (p *Prometheus) ObserveStage(stage string, d time.Duration) {
	p.stage.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Prometheus) SetRows(stage, dataset string, n int) {
	p.rows.WithLabelValues(stage, dataset).Set(float64(n))
}

func (p *Prometheus) IncError(kind, stage string) {
	p.errors.WithLabelValues(kind, stage).Inc()
}

// WriteTextfile writes the registry in text exposition format. The file is
// replaced atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return etlerr.NewIOError(path, err)
	}
	if err := prometheus.WriteToTextfile(path, p.reg); err != nil {
		return etlerr.NewIOError(path, err)
	}
	return nil
}
