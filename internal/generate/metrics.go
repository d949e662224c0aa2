package generate

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts case outcomes for one run. Each run gets its own registry so
// the textfile holds only that run.
type Metrics struct {
	registry *prometheus.Registry

	Cases         *prometheus.CounterVec
	CaseDuration  prometheus.Histogram
	InactiveSinks prometheus.Counter
	LastRunCases  prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Cases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casegen_cases_total",
			Help: "Cases processed, labeled by outcome.",
		}, []string{"status"}),
		CaseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "casegen_case_duration_seconds",
			Help:    "Time to resolve and materialize one case.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		InactiveSinks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "casegen_inactive_sinks_total",
			Help: "Sinks shut in across all materialized cases.",
		}),
		LastRunCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "casegen_run_cases",
			Help: "Number of cases in the run's matrix.",
		}),
	}
	reg.MustRegister(m.Cases, m.CaseDuration, m.InactiveSinks, m.LastRunCases)
	return m
}

func (m *Metrics) observe(rec CaseRecord) {
	if m == nil {
		return
	}
	m.Cases.WithLabelValues(string(rec.Status)).Inc()
	if rec.Status == StatusSucceeded {
		m.CaseDuration.Observe(rec.Duration.Seconds())
		m.InactiveSinks.Add(float64(len(rec.InactiveSinks)))
	}
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
