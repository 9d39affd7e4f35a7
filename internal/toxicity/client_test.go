package toxicity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/toxicity"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

var (
	_ toxicity.Oracle = (*toxicity.Client)(nil)
	_ toxicity.Oracle = toxicity.Static{}
	_ triage.Oracle   = (*toxicity.Client)(nil)
)

func scoreServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/score" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Score(t *testing.T) {
	srv, _ := scoreServer(t, `{"toxicity": 0.73}`, http.StatusOK)
	client := toxicity.NewClient(toxicity.Config{URL: srv.URL + "/"}, logger.NewNop(), nil)

	score, err := client.Score(context.Background(), "jullie zijn idioten")
	require.NoError(t, err)
	assert.InDelta(t, 0.73, score, 1e-9)
}

func TestClient_ScoreFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"server error", `{"error": "boom"}`, http.StatusInternalServerError},
		{"above one", `{"toxicity": 1.5}`, http.StatusOK},
		{"negative", `{"toxicity": -0.1}`, http.StatusOK},
		{"missing field", `{}`, http.StatusOK},
		{"garbage", `not json`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := scoreServer(t, tt.body, tt.status)
			client := toxicity.NewClient(toxicity.Config{URL: srv.URL}, logger.NewNop(), nil)

			score, err := client.Score(context.Background(), "tekst")
			require.ErrorIs(t, err, toxicity.ErrUnavailable)
			assert.Zero(t, score)
		})
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	srv, calls := scoreServer(t, `{"error": "down"}`, http.StatusBadGateway)

	var changes atomic.Int64
	client := toxicity.NewClient(toxicity.Config{
		URL: srv.URL,
		Breaker: circuitbreaker.Config{
			FailureThreshold: 2,
			Timeout:          time.Hour,
			OnStateChange:    func(_, _ circuitbreaker.State) { changes.Add(1) },
		},
	}, logger.NewNop(), nil)

	ctx := context.Background()
	for range 2 {
		_, err := client.Score(ctx, "tekst")
		require.ErrorIs(t, err, toxicity.ErrUnavailable)
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.BreakerState())

	_, err := client.Score(ctx, "tekst")
	require.ErrorIs(t, err, toxicity.ErrUnavailable)
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), changes.Load())
}

func TestClient_CanceledContext(t *testing.T) {
	srv, calls := scoreServer(t, `{"toxicity": 0.1}`, http.StatusOK)
	client := toxicity.NewClient(toxicity.Config{URL: srv.URL, RateLimit: 1}, logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Score(ctx, "tekst")
	require.ErrorIs(t, err, toxicity.ErrUnavailable)
	assert.Zero(t, calls.Load())
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "model_version": "v1"}`))
	}))
	defer srv.Close()

	client := toxicity.NewClient(toxicity.Config{URL: srv.URL}, logger.NewNop(), nil)
	assert.NoError(t, client.Health(context.Background()))
}

func TestClient_HealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := toxicity.NewClient(toxicity.Config{URL: url}, logger.NewNop(), nil)
	assert.ErrorIs(t, client.Health(context.Background()), toxicity.ErrUnavailable)
}

func TestStatic(t *testing.T) {
	score, err := toxicity.Static{Value: 0.6}.Score(context.Background(), "anything")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, score, 1e-9)
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg toxicity.Config
	cfg.SetDefaults()

	assert.NotEmpty(t, cfg.URL)
	assert.Positive(t, cfg.Timeout)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
}
