// Package metrics provides the centralized Prometheus metrics registry for
// the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "predictions_generated_total",
		Help:      "Total number of predictions generated",
	}, []string{"sport"})
	PredictionsDeduplicatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "predictions_deduplicated_total",
		Help:      "Total number of prediction requests served from an existing unvalidated prediction",
	})
	OutcomesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "outcomes_recorded_total",
		Help:      "Total number of outcomes recorded, by match method",
	}, []string{"method"})
	SyncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "sync_errors_total",
		Help:      "Total number of batch sync errors",
	})
	RecalibrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "recalibrations_total",
		Help:      "Total number of accepted recalibration runs",
	})
	ValueBetsFlaggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_oracle",
		Name:      "value_bets_flagged_total",
		Help:      "Total number of value bets flagged, by market",
	}, []string{"market"})
)

// Gauge metrics
var (
	CalibrationA = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_oracle",
		Name:      "calibration_a",
		Help:      "Active calibration slope parameter",
	})
	CalibrationB = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_oracle",
		Name:      "calibration_b",
		Help:      "Active calibration intercept parameter",
	})
	ValidatedExamples = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_oracle",
		Name:      "validated_examples",
		Help:      "Number of validated training examples",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_oracle",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo simulation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_oracle",
		Name:      "sync_duration_seconds",
		Help:      "Duration of batch sync runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(PredictionsDeduplicatedTotal)
		registry.MustRegister(OutcomesRecordedTotal)
		registry.MustRegister(SyncErrorsTotal)
		registry.MustRegister(RecalibrationsTotal)
		registry.MustRegister(ValueBetsFlaggedTotal)

		registry.MustRegister(CalibrationA)
		registry.MustRegister(CalibrationB)
		registry.MustRegister(ValidatedExamples)

		registry.MustRegister(SimulationDuration)
		registry.MustRegister(SyncDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// SetCalibration publishes the active calibration params.
func SetCalibration(a, b float64) {
	CalibrationA.Set(a)
	CalibrationB.Set(b)
}
