package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceRecordsDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/sessions", http.StatusOK, 20*time.Millisecond)
	m.RecordCheckout("deposit", OutcomeSuccess)
	m.RecordWebhookEvent("payment_intent.succeeded", OutcomeSuccess)
	m.RecordSessionsPersisted(45)
	m.RecordSessionsPersisted(0)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/sessions",status="200"} 1`)
	assert.Contains(t, body, `checkouts_total{outcome="success",payment_type="deposit"} 1`)
	assert.Contains(t, body, `payment_webhook_events_total{outcome="success",type="payment_intent.succeeded"} 1`)
	assert.Contains(t, body, "sessions_persisted_total 45")
	assert.Contains(t, body, "goroutines_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordEligibility(true)
	m.RecordQuote("full")
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
