// Package profiling starts optional Pyroscope continuous profiling and a
// localhost pprof endpoint.
package profiling

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // bound to localhost only
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

const (
	defaultServerURL   = "http://pyroscope:4040"
	defaultEnvironment = "development"
	defaultPprofPort   = 6060
	pprofHeaderTimeout = 10 * time.Second
)

// Config controls both profilers. Both are off by default.
type Config struct {
	Enabled      bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"enabled"`
	ServerURL    string `env:"PYROSCOPE_SERVER_URL"        yaml:"server_url"`
	Environment  string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
	PprofEnabled bool   `env:"ENABLE_PROFILING"            yaml:"pprof_enabled"`
	PprofPort    int    `env:"PPROF_PORT"                  yaml:"pprof_port"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = defaultServerURL
	}
	if c.Environment == "" {
		c.Environment = defaultEnvironment
	}
	if c.PprofPort == 0 {
		c.PprofPort = defaultPprofPort
	}
}

// Profiler wraps a running Pyroscope profiler. A nil *Profiler is valid.
type Profiler struct {
	profiler *pyroscope.Profiler
}

// Start starts Pyroscope when enabled. It returns a nil profiler and no
// error when profiling is disabled.
func Start(cfg Config, serviceName, version string, log logger.Logger) (*Profiler, error) {
	cfg.SetDefaults()
	if !cfg.Enabled {
		return nil, nil
	}
	if log == nil {
		log = logger.NewNop()
	}

	pcfg := pyroscope.Config{
		ApplicationName: "north-cloud." + serviceName,
		ServerAddress:   cfg.ServerURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	}

	p, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", pcfg.ApplicationName),
		logger.String("server", cfg.ServerURL),
		logger.String("environment", cfg.Environment),
	)
	return &Profiler{profiler: p}, nil
}

// Stop stops the profiler.
func (p *Profiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

// StartPprof serves /debug/pprof on localhost when enabled.
func StartPprof(cfg Config, log logger.Logger) {
	cfg.SetDefaults()
	if !cfg.PprofEnabled {
		return
	}
	if log == nil {
		log = logger.NewNop()
	}

	addr := fmt.Sprintf("localhost:%d", cfg.PprofPort)
	srv := &http.Server{Addr: addr, Handler: http.DefaultServeMux, ReadHeaderTimeout: pprofHeaderTimeout}

	go func() {
		log.Info("Starting pprof server", logger.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
