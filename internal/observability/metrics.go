package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the archive service.
type Metrics struct {
	SubmissionsReceived prometheus.Counter
	SubmissionsArchived prometheus.Counter
	SubmissionErrors    *prometheus.CounterVec // labels: stage={validate,detect,upload,archive}
	SubmissionDuration  prometheus.Histogram
	SunspotsDetected    prometheus.Histogram

	// Template slot metrics.
	SlotLookups *prometheus.CounterVec // labels: slot={original,result}, result={found,missing}

	// External API metrics.
	APIRequests *prometheus.CounterVec   // labels: service, outcome={success,error}
	APIDuration *prometheus.HistogramVec // labels: service

	// Weather metrics.
	WeatherCache       *prometheus.CounterVec // labels: tier={memory,redis}, result={hit,miss}
	WeatherUnavailable prometheus.Counter

	DetectorEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SubmissionsReceived,
		m.SubmissionsArchived,
		m.SubmissionErrors,
		m.SubmissionDuration,
		m.SunspotsDetected,
		m.SlotLookups,
		m.APIRequests,
		m.APIDuration,
		m.WeatherCache,
		m.WeatherUnavailable,
		m.DetectorEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics outside the default registry, for
// one-shot commands that never serve /metrics and for tests that would
// otherwise hit "already registered" panics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SubmissionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "submissions_received_total",
			Help:      "Total observation submissions received.",
		}),
		SubmissionsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "submissions_archived_total",
			Help:      "Total observations archived to the document database.",
		}),
		SubmissionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "submission_errors_total",
			Help:      "Failed submissions by the stage that failed.",
		}, []string{"stage"}),
		SubmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sunspot",
			Name:      "submission_duration_seconds",
			Help:      "Duration of a complete detect-upload-archive submission.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		SunspotsDetected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sunspot",
			Name:      "sunspots_detected",
			Help:      "Number of sunspots detected per image.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		SlotLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "template_slot_lookups_total",
			Help:      "Template heading lookups by slot and result.",
		}, []string{"slot", "result"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "api_requests_total",
			Help:      "External API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sunspot",
			Name:      "api_duration_seconds",
			Help:      "External API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		WeatherUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunspot",
			Name:      "weather_unavailable_total",
			Help:      "Observations archived without weather data.",
		}),
		DetectorEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sunspot",
			Name:      "detector_enabled",
			Help:      "1 when sunspot detection is enabled, 0 otherwise.",
		}),
	}
}

// ObserveAPI records one external API call. Safe to call on nil Metrics.
func (m *Metrics) ObserveAPI(service string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.APIRequests.WithLabelValues(service, outcome).Inc()
	m.APIDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
