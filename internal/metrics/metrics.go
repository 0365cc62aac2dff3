// Package metrics exposes Prometheus collectors for the base URL scorer.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluationsTotal           *prometheus.CounterVec
	scoreDistribution          prometheus.Histogram
	featureHitsTotal           *prometheus.CounterVec
	eventsTotal                *prometheus.CounterVec
	validationTimeoutsTotal    prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		evaluationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "baseurl_evaluations_total",
				Help: "Total number of candidate URLs evaluated, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scoreDistribution = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "baseurl_score",
				Help:    "Distribution of base URL scores.",
				Buckets: []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1},
			},
		)

		featureHitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "baseurl_feature_hits_total",
				Help: "Total number of times each feature was present in a scored URL.",
			},
			[]string{"feature"},
		)

		eventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "baseurl_events_total",
				Help: "Total number of bus events handled, labeled by subject kind and result.",
			},
			[]string{"kind", "result"},
		)

		validationTimeoutsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "baseurl_validation_timeouts_total",
				Help: "Total number of URL validations abandoned because the pattern match timed out.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// ObserveScore records a scored candidate and the features present in it.
func ObserveScore(score float64, present []string) {
	Init()
	evaluationsTotal.WithLabelValues("scored").Inc()
	scoreDistribution.Observe(score)
	for _, f := range present {
		featureHitsTotal.WithLabelValues(f).Inc()
	}
}

// ObserveNotApplicable records a candidate that was rejected before scoring.
func ObserveNotApplicable() {
	Init()
	evaluationsTotal.WithLabelValues("not_applicable").Inc()
}

// ObserveValidationTimeout records a URL validation that hit its match timeout.
func ObserveValidationTimeout() {
	Init()
	validationTimeoutsTotal.Inc()
}

// ObserveEvent records a handled bus event.
func ObserveEvent(kind, result string) {
	Init()
	eventsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, code int, elapsed time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
