package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/calculator"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	defaults := config.DefaultsConfig{Spot: 100, Strike: 100, Rate: 0.05, Maturity: 1, Volatility: 0.2, Kind: "call"}
	m := metrics.New()
	spots := data.NewStaticSpotProvider(map[string]float64{"SPY": 581.39})
	svc := calculator.NewService(defaults, 4, spots, m)
	return NewServer(config.ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, svc, m)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]string
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
}

func TestDefaults(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/defaults", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d config.DefaultsConfig
	decode(t, rec, &d)
	assert.Equal(t, 0.2, d.Volatility)
	assert.Equal(t, "call", d.Kind)
}

func TestPriceEndpoint(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/price", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res calculator.Result
	decode(t, rec, &res)
	assert.Equal(t, "10.4506", res.Price.String())

	rec = do(t, s, http.MethodGet, "/price?kind=put", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.Equal(t, "5.5735", res.Price.String())

	rec = do(t, s, http.MethodPost, "/price", []byte(`{"spot":110,"strike":100,"maturity":0,"kind":"call"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)
	assert.Equal(t, "10", res.Price.String())
	assert.Equal(t, calculator.SourceForm, res.SpotSource)
}

func TestPriceEndpointTicker(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/price?ticker=spy&strike=580", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res calculator.Result
	decode(t, rec, &res)
	assert.Equal(t, 581.39, res.Quote.Spot)

	rec = do(t, s, http.MethodGet, "/price?ticker=NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPriceEndpointRejectsInvalid(t *testing.T) {
	s := newTestServer()

	for _, target := range []string{
		"/price?strike=-1",
		"/price?volatility=abc",
		"/price?kind=straddle",
	} {
		rec := do(t, s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var e errorResponse
		decode(t, rec, &e)
		assert.NotEmpty(t, e.Error, target)
	}

	// negative rates are a valid regime
	rec := do(t, s, http.MethodGet, "/price?rate=-0.01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImpliedVolEndpoint(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/implied-vol?premium=10.450583572185565", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res calculator.VolResult
	decode(t, rec, &res)
	assert.Equal(t, "0.2", res.ImpliedVol.String())

	rec = do(t, s, http.MethodGet, "/implied-vol?premium=99.99999", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodGet, "/implied-vol", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSweepEndpoint(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/sweep?axis=strike&from=90&to=110&step=10&kind=put", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res sweepResponse
	decode(t, rec, &res)
	require.Len(t, res.Results, 3)
	assert.Equal(t, "5.5735", res.Results[1].Price.String())

	rec = do(t, s, http.MethodGet, "/sweep?axis=strike&from=90&to=110", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	do(t, s, http.MethodGet, "/price", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `option_pricer_requests_total{kind="call",operation="price",outcome="ok"} 1`), body)
	assert.Contains(t, body, `http_server_requests_total{method="GET",path="/price",status="200"} 1`)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
