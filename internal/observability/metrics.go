package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_app"

// Metrics holds the Prometheus counters, histograms, and gauges for the app.
type Metrics struct {
	ActionsProcessed *prometheus.CounterVec   // labels: store, action
	EffectsStarted   *prometheus.CounterVec   // labels: store
	EffectDuration   *prometheus.HistogramVec // labels: store
	StoreRunning     *prometheus.GaugeVec     // labels: store

	// Collaborator metrics.
	CollaboratorRequests *prometheus.CounterVec   // labels: collaborator={openweather,unsplash,location}, outcome={success,error,rejected}
	CollaboratorDuration *prometheus.HistogramVec // labels: collaborator

	SnapshotsPublished prometheus.Counter
	SlideshowTicks     prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		ActionsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_processed_total",
			Help:      "Actions reduced, by store and action type.",
		}, []string{"store", "action"}),
		EffectsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_started_total",
			Help:      "Asynchronous effects launched, by store.",
		}, []string{"store"}),
		EffectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "effect_duration_seconds",
			Help:      "Time from effect start until it returns.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"store"}),
		StoreRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_running",
			Help:      "1 while a store's action loop is active.",
		}, []string{"store"}),
		CollaboratorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_requests_total",
			Help:      "Outbound collaborator calls by collaborator and outcome.",
		}, []string{"collaborator", "outcome"}),
		CollaboratorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_duration_seconds",
			Help:      "Outbound collaborator call duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"collaborator"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_snapshots_published_total",
			Help:      "Weather snapshots written to Kafka.",
		}),
		SlideshowTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slideshow_ticks_total",
			Help:      "Slideshow timer ticks delivered.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ActionsProcessed,
		m.EffectsStarted,
		m.EffectDuration,
		m.StoreRunning,
		m.CollaboratorRequests,
		m.CollaboratorDuration,
		m.SnapshotsPublished,
		m.SlideshowTicks,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
