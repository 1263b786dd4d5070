package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
	"github.com/Debarshi-Chaudhuri/news-api/internal/server"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, path, http.NoBody)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth_Healthy(t *testing.T) {
	s := server.New(server.Config{
		ServiceName: "news-api",
		Checks: map[string]server.HealthChecker{
			"store": func(context.Context) error { return nil },
		},
	}, logger.NewNop())

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body server.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, server.HealthStatusHealthy, body.Status)
	assert.Equal(t, "news-api", body.Service)
	assert.Equal(t, server.HealthStatusHealthy, body.Checks["store"].Status)
}

func TestHealth_UnhealthyCheck(t *testing.T) {
	s := server.New(server.Config{
		Checks: map[string]server.HealthChecker{
			"store": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
	}, logger.NewNop())

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body server.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, server.HealthStatusUnhealthy, body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"].Message)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.Stored(metrics.OutcomeInserted)

	s := server.New(server.Config{Metrics: m.Handler()}, logger.NewNop())

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `news_articles_stored_total{outcome="inserted"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	s := server.New(server.Config{}, logger.NewNop())
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := server.New(server.Config{Address: "127.0.0.1:0"}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	require.NoError(t, <-done)
}
