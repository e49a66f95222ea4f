package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecasting and alerting pipeline.
type Metrics struct {
	SweepsTotal   *prometheus.CounterVec // labels: outcome={success,skipped,error}
	SweepDuration prometheus.Histogram
	SweepRunning  prometheus.Gauge

	SamplesIngested *prometheus.CounterVec // labels: kind={pollutant,weather}
	ModelsTrained   prometheus.Counter
	ModelFallbacks  prometheus.Counter
	TrainingRows    prometheus.Histogram

	AlertsCreated    *prometheus.CounterVec // labels: severity
	AlertsSuppressed *prometheus.CounterVec // labels: reason={dedup,quiet_hours}
	AlertsExpired    prometheus.Counter
	NotifyFailures   *prometheus.CounterVec // labels: channel
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SweepsTotal,
		m.SweepDuration,
		m.SweepRunning,
		m.SamplesIngested,
		m.ModelsTrained,
		m.ModelFallbacks,
		m.TrainingRows,
		m.AlertsCreated,
		m.AlertsSuppressed,
		m.AlertsExpired,
		m.NotifyFailures,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct them repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "sweeps_total",
			Help:      "Location sweeps by outcome.",
		}, []string{"outcome"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airsense",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a full train-forecast-evaluate sweep for one location.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SweepRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airsense",
			Name:      "sweep_running",
			Help:      "1 when the sweep scheduler is started, 0 when stopped.",
		}),
		SamplesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "samples_ingested_total",
			Help:      "Samples written to storage by kind.",
		}, []string{"kind"}),
		ModelsTrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "models_trained_total",
			Help:      "Per-parameter models trained across all sweeps.",
		}),
		ModelFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "model_fallbacks_total",
			Help:      "Forecasts that used the trend/baseline fallback instead of a model.",
		}),
		TrainingRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airsense",
			Name:      "training_rows",
			Help:      "Joined training rows per parameter per sweep.",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "alerts_created_total",
			Help:      "Alert records created by severity.",
		}, []string{"severity"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "alerts_suppressed_total",
			Help:      "Alerts suppressed before creation by reason.",
		}, []string{"reason"}),
		AlertsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "alerts_expired_total",
			Help:      "Alert records marked expired by the TTL sweep.",
		}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airsense",
			Name:      "notify_failures_total",
			Help:      "Notification channel failures by channel.",
		}, []string{"channel"}),
	}
}
