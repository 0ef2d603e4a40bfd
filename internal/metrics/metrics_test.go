package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePricing(t *testing.T) {
	m := New()
	m.ObservePricing("price", "call", OutcomeOK, time.Now())
	m.ObservePricing("price", "call", OutcomeOK, time.Now())
	m.ObservePricing("price", "put", OutcomeInvalid, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PricingRequests.WithLabelValues("price", "call", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PricingRequests.WithLabelValues("price", "put", OutcomeInvalid)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePricing("price", "call", OutcomeOK, time.Now())
	m.ObserveSpot("static", OutcomeOK)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveSpot("massive", OutcomeError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `option_pricer_spot_lookups_total{outcome="error",provider="massive"} 1`)
}
