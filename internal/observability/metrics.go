package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one report run. Each instance
// owns its registry, so a batch run can push exactly what it recorded.
type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded prometheus.Counter
	Warnings      *prometheus.CounterVec   // labels: kind
	GeoPoints     *prometheus.CounterVec   // labels: policy
	StageDuration *prometheus.HistogramVec // labels: stage={load,aggregate,publish}
	SinkErrors    *prometheus.CounterVec   // labels: sink
	RunSuccess    prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty,retry}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates the run metrics and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outbreak_report",
			Name:      "records_loaded_total",
			Help:      "Outbreak records read from the data file.",
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_report",
			Name:      "warnings_total",
			Help:      "Non-fatal report warnings by kind.",
		}, []string{"kind"}),
		GeoPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_report",
			Name:      "geo_points_total",
			Help:      "Records placed on the map by coordinate policy.",
		}, []string{"policy"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outbreak_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_report",
			Name:      "sink_errors_total",
			Help:      "Report publish failures by sink.",
		}, []string{"sink"}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbreak_report",
			Name:      "run_success",
			Help:      "1 when the last run produced and published a report, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_report",
			Name:      "geocode_requests_total",
			Help:      "State geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outbreak_report",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbreak_report",
			Name:      "geocode_enabled",
			Help:      "1 when state geocoding is enabled, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.RecordsLoaded,
		m.Warnings,
		m.GeoPoints,
		m.StageDuration,
		m.SinkErrors,
		m.RunSuccess,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
