// Package metrics exposes fixture load and verification outcomes as
// Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

const namespace = "holocron"

// Load results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics owns a private registry. It implements fixture.Observer.
type Metrics struct {
	registry     *prometheus.Registry
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	rows         *prometheus.GaugeVec
	checksFailed prometheus.Gauge
}

var _ fixture.Observer = (*Metrics)(nil)

// New creates the metrics and registers them, plus the Go runtime
// collector when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fixture",
			Name:      "loads_total",
			Help:      "Fixture loads by variant and result.",
		}, []string{"variant", "result"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fixture",
			Name:      "load_duration_seconds",
			Help:      "Duration of successful fixture loads.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"variant"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fixture",
			Name:      "rows",
			Help:      "Rows seeded by the last successful load.",
		}, []string{"table"}),
		checksFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fixture",
			Name:      "checks_failed",
			Help:      "Failed checks of the last verification.",
		}),
	}
	m.registry.MustRegister(m.loads, m.loadDuration, m.rows, m.checksFailed)
	if withRuntime {
		m.registry.MustRegister(collectors.NewGoCollector())
	}
	return m
}

// Registry returns the registry holding every holocron metric.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveLoad implements fixture.Observer.
func (m *Metrics) ObserveLoad(v types.Variant, report fixture.LoadReport, err error) {
	if err != nil {
		m.loads.WithLabelValues(string(v), ResultError).Inc()
		return
	}
	m.loads.WithLabelValues(string(v), ResultSuccess).Inc()
	m.loadDuration.WithLabelValues(string(v)).Observe(report.Duration.Seconds())
	m.rows.WithLabelValues(types.MoviesTable).Set(float64(report.Movies))
	m.rows.WithLabelValues(types.CharactersTable).Set(float64(report.Characters))
}

// ObserveVerify records the outcome of a verification.
func (m *Metrics) ObserveVerify(r fixture.Report) {
	m.checksFailed.Set(float64(len(r.Failed())))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry to path for the node exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
