package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("contact")

	m.RecordSubmission("accepted")
	m.RecordSubmission("accepted")
	m.RecordSubmission("rejected")
	m.RecordDelivery("ninox", "failed", 0.2)
	m.RecordAlert("sms", "suppressed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("ninox", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsTotal.WithLabelValues("sms", "suppressed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSubmission("accepted")
		m.RecordDelivery("email", "delivered", 0.1)
		m.RecordAlert("email", "sent")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("contact")
	m.RecordSubmission("accepted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `swe_contact_submissions_total{result="accepted"} 1`)
}

func TestNew_SanitizesServiceName(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() { m = New("contact-api.v2") })
	m.RecordSubmission("accepted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `swe_contact_api_v2_submissions_total{result="accepted"} 1`)
}
