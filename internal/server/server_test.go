package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/server"
)

func newTestRouter(cfg server.CORSConfig) *gin.Engine {
	srvCfg := &server.Config{CORS: cfg}
	srvCfg.SetDefaults()
	r := server.NewRouter(srvCfg, logger.NewNop())
	gin.SetMode(gin.TestMode)
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newTestRouter(server.CORSConfig{})
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetString("request_id")
		assert.NotNil(t, logger.FromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	r := newTestRouter(server.CORSConfig{})
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestCORSMiddleware(t *testing.T) {
	r := newTestRouter(server.CORSConfig{AllowedOrigins: []string{"https://gemeente.example"}})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", http.NoBody)
	req.Header.Set("Origin", "https://gemeente.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://gemeente.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig_OriginsEnableCORS(t *testing.T) {
	cfg := server.CORSConfig{AllowedOrigins: []string{"https://gemeente.example"}}
	cfg.SetDefaults()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"https://gemeente.example"}, cfg.AllowedOrigins)
	assert.Equal(t, server.DefaultCORSMaxAge, cfg.MaxAge)
}

func TestHealthRoutes(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		checks     map[string]server.HealthChecker
		wantCode   int
		wantStatus server.HealthStatus
	}{
		{"no checks", nil, http.StatusOK, server.HealthStatusHealthy},
		{"degraded", map[string]server.HealthChecker{
			"redis": server.PingChecker("redis", server.HealthStatusDegraded, down),
		}, http.StatusOK, server.HealthStatusDegraded},
		{"unhealthy", map[string]server.HealthChecker{
			"redis":    server.PingChecker("redis", server.HealthStatusDegraded, up),
			"toxicity": server.PingChecker("toxicity", server.HealthStatusUnhealthy, down),
		}, http.StatusServiceUnavailable, server.HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(server.CORSConfig{})
			server.RegisterHealthRoutes(r, server.HealthOptions{ServiceName: "triage", ServiceVersion: "test", Checks: tt.checks})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
			assert.Equal(t, tt.wantCode, w.Code)

			var resp server.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "triage", resp.Service)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg server.Config
	cfg.SetDefaults()

	assert.Equal(t, server.DefaultPort, cfg.Port)
	assert.Equal(t, server.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestNewServer_RegistersRoutes(t *testing.T) {
	srv := server.NewServer(&server.Config{}, logger.NewNop(), func(r *gin.Engine) {
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
