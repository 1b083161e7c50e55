package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// trigger pipeline.
type Metrics struct {
	PipelineRunning   prometheus.Gauge
	RecordsExtracted  prometheus.Counter
	StationsSkipped   prometheus.Counter
	StationsTriggered prometheus.Counter
	FetchRetries      prometheus.Counter

	FetchDuration prometheus.Histogram
	RunDuration   prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "glofas_trigger",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glofas_trigger",
			Name:      "records_extracted_total",
			Help:      "Total ensemble forecast records extracted.",
		}),
		StationsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glofas_trigger",
			Name:      "stations_skipped_total",
			Help:      "Sites skipped for missing mapping or threshold configuration.",
		}),
		StationsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glofas_trigger",
			Name:      "stations_triggered_total",
			Help:      "Stations whose trigger flag was raised at the selected lead time.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glofas_trigger",
			Name:      "fetch_retries_total",
			Help:      "Failed forecast download attempts that were retried.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "glofas_trigger",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the forecast acquisition phase.",
			Buckets:   []float64{1, 10, 60, 300, 900, 3600, 14400, 43200},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "glofas_trigger",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{1, 10, 60, 300, 900, 3600, 14400, 43200},
		}),
	}

	prometheus.MustRegister(
		m.PipelineRunning,
		m.RecordsExtracted,
		m.StationsSkipped,
		m.StationsTriggered,
		m.FetchRetries,
		m.FetchDuration,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "glofas_trigger", Name: "pipeline_running"}),
		RecordsExtracted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "glofas_trigger", Name: "records_extracted_total"}),
		StationsSkipped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "glofas_trigger", Name: "stations_skipped_total"}),
		StationsTriggered: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "glofas_trigger", Name: "stations_triggered_total"}),
		FetchRetries:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "glofas_trigger", Name: "fetch_retries_total"}),
		FetchDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "glofas_trigger", Name: "fetch_duration_seconds"}),
		RunDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "glofas_trigger", Name: "run_duration_seconds"}),
	}
}
