package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveConversion(t *testing.T) {
	m := New()
	m.ObserveConversion("Length", nil)
	m.ObserveConversion("Length", nil)
	m.ObserveConversion("", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.conversions.WithLabelValues("Length", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("unknown", OutcomeError)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveConversion("Time", nil)
		m.ObserveRequest("cli", "convert")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("http", "/api/convert")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `unitconv_requests_total{route="/api/convert",surface="http"} 1`)
}
