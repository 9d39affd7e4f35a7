package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/api"
	"github.com/jonesrussell/north-cloud/triage/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/events"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/server"
	"github.com/jonesrussell/north-cloud/triage/internal/toxicity"
)

func mlServer(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/score":
			_, _ = w.Write([]byte(`{"toxicity": 0.1, "model_version": "test"}`))
		case "/health":
			if !healthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status": "ok", "model_version": "test"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, mlURL string) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Toxicity: toxicity.Config{URL: mlURL}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func serve(svc *bootstrap.Service, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	svc.Server.Router().ServeHTTP(w, req)
	return w
}

func TestNewService_TriageEndToEnd(t *testing.T) {
	cfg := testConfig(t, mlServer(t, true).URL)
	mr := miniredis.RunT(t)
	cfg.Redis = events.Config{Enabled: true, Address: mr.Addr(), Stream: events.DefaultStream}

	svc, err := bootstrap.NewService(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	w := serve(svc, http.MethodPost, "/api/v1/triage", api.TriageRequest{
		Text:         "Overstroming in de straat, gevaarlijk!",
		Neighborhood: "Overvecht",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.TriageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Waterbeheer", resp.Result.Category)
	assert.Equal(t, 10, resp.Result.PriorityScore)
	assert.Equal(t, 1, svc.Results.Len())

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	assert.Eventually(t, func() bool {
		n, xErr := client.XLen(context.Background(), events.DefaultStream).Result()
		return xErr == nil && n == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewService_HealthReportsDependencies(t *testing.T) {
	cfg := testConfig(t, mlServer(t, true).URL)
	mr := miniredis.RunT(t)
	cfg.Redis = events.Config{Enabled: true, Address: mr.Addr(), Stream: events.DefaultStream}

	svc, err := bootstrap.NewService(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	w := serve(svc, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var health server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, server.HealthStatusHealthy, health.Status)
	assert.Equal(t, "triage", health.Service)
	assert.Contains(t, health.Checks, "toxicity")
	assert.Contains(t, health.Checks, "redis")
}

func TestNewService_UnhealthyWithoutToxicityService(t *testing.T) {
	svc, err := bootstrap.NewService(testConfig(t, mlServer(t, false).URL), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	w := serve(svc, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewService_RedisUnavailableDisablesEvents(t *testing.T) {
	cfg := testConfig(t, mlServer(t, true).URL)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	cfg.Redis = events.Config{Enabled: true, Address: addr}

	svc, err := bootstrap.NewService(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	w := serve(svc, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.NotContains(t, health.Checks, "redis")
}

func TestNewService_OperatorRoutesRequireToken(t *testing.T) {
	cfg := testConfig(t, mlServer(t, true).URL)
	cfg.Auth.JWTSecret = "operator-secret"

	svc, err := bootstrap.NewService(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	w := serve(svc, http.MethodPut, "/api/v1/settings/include-threats", map[string]bool{"include_threats": true})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(svc, http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewCore_RejectsInvalidSettings(t *testing.T) {
	cfg := testConfig(t, "http://unused")
	cfg.Triage.Neighborhoods[0].Weight = 9

	_, err := bootstrap.NewCore(cfg, toxicity.Static{Value: 0.2}, logger.NewNop(), nil)
	require.Error(t, err)
}

func TestNewCore_AnalyzesWithStaticOracle(t *testing.T) {
	core, err := bootstrap.NewCore(testConfig(t, "http://unused"), toxicity.Static{Value: 0.9}, logger.NewNop(), nil)
	require.NoError(t, err)

	result, err := core.Analyzer.Analyze(context.Background(), core.Settings.Snapshot(), "Ik sla je kapot", 0)
	require.NoError(t, err)
	assert.True(t, result.IsThreat)
}
