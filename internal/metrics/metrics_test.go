package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMutation("update", OutcomeForbidden)
	c.RecordMutation("update", OutcomeForbidden)
	c.RecordMutation("update", OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("update", OutcomeForbidden)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mutations.WithLabelValues("update", OutcomeSuccess)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRequest(http.MethodGet, "/api/events", http.StatusOK, 5*time.Millisecond)
	c.RecordRateLimited()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(body, `evently_http_requests_total{method="GET",route="/api/events",status="200"} 1`), body)
	assert.Contains(t, body, "evently_rate_limited_total 1")
}
