package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for checkout and webhook counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeIgnored  = "ignored"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and
// enrollment events.
type MetricsService struct {
	registry             *prometheus.Registry
	handler              http.Handler
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	eligibilityDecisions *prometheus.CounterVec
	quotes               *prometheus.CounterVec
	checkouts            *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	sessionsGenerated    prometheus.Counter
}

// NewMetricsService registers the Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	eligibilityDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_decisions_total",
		Help: "Scholarship eligibility evaluations by outcome",
	}, []string{"eligible"})

	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_quotes_total",
		Help: "Payment quotes by payment type",
	}, []string{"payment_type"})

	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout attempts by payment type and outcome",
	}, []string{"payment_type", "outcome"})

	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment gateway webhook events by type and outcome",
	}, []string{"type", "outcome"})

	sessionsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_persisted_total",
		Help: "Generated sessions inserted into the sessions table",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, eligibilityDecisions, quotes, checkouts, webhookEvents, sessionsGenerated, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		eligibilityDecisions: eligibilityDecisions,
		quotes:               quotes,
		checkouts:            checkouts,
		webhookEvents:        webhookEvents,
		sessionsGenerated:    sessionsGenerated,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordEligibility counts an eligibility decision.
func (m *MetricsService) RecordEligibility(eligible bool) {
	if m == nil {
		return
	}
	m.eligibilityDecisions.WithLabelValues(fmt.Sprintf("%t", eligible)).Inc()
}

// RecordQuote counts a priced quote.
func (m *MetricsService) RecordQuote(paymentType string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(paymentType).Inc()
}

// RecordCheckout counts a checkout attempt.
func (m *MetricsService) RecordCheckout(paymentType, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(paymentType, outcome).Inc()
}

// RecordWebhookEvent counts a processed gateway event.
func (m *MetricsService) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordSessionsPersisted counts generated sessions written to storage.
func (m *MetricsService) RecordSessionsPersisted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sessionsGenerated.Add(float64(count))
}
