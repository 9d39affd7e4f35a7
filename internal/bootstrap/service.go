// Package bootstrap wires configuration into a running triage service.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/triage/internal/api"
	"github.com/jonesrussell/north-cloud/triage/internal/auth"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/events"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/processor"
	"github.com/jonesrussell/north-cloud/triage/internal/profiling"
	"github.com/jonesrussell/north-cloud/triage/internal/server"
	"github.com/jonesrussell/north-cloud/triage/internal/session"
	"github.com/jonesrussell/north-cloud/triage/internal/settings"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
	"github.com/jonesrussell/north-cloud/triage/internal/toxicity"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

// Core is the triage pipeline without any transport around it.
type Core struct {
	Analyzer *triage.Analyzer
	Settings *settings.Store
}

// NewCore builds the analyzer and the settings store from cfg. oracle is
// usually a *toxicity.Client; the CLI substitutes a fixed score.
func NewCore(cfg *config.Config, oracle triage.Oracle, log logger.Logger, tp *telemetry.Provider) (*Core, error) {
	store, err := settings.NewStore(cfg.State(), log)
	if err != nil {
		return nil, fmt.Errorf("load triage settings: %w", err)
	}
	return &Core{
		Analyzer: triage.NewAnalyzer(oracle, log, tp),
		Settings: store,
	}, nil
}

// Service holds every component of the HTTP service.
type Service struct {
	Core

	Config    *config.Config
	Logger    logger.Logger
	Telemetry *telemetry.Provider
	Toxicity  *toxicity.Client
	Results   *session.Log
	Batch     *processor.BatchProcessor
	Handler   *api.Handler
	Server    *server.Server

	redis     *redis.Client
	publisher *events.RedisPublisher
	profiler  *profiling.Profiler
	startTime time.Time
}

// NewService creates all components for the HTTP service.
func NewService(cfg *config.Config, log logger.Logger) (*Service, error) {
	tp := telemetry.NewProvider(nil)
	client := toxicity.NewClient(cfg.Toxicity, log, tp)

	core, err := NewCore(cfg, client, log, tp)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Core:      *core,
		Config:    cfg,
		Logger:    log,
		Telemetry: tp,
		Toxicity:  client,
		Results:   session.NewLog(tp),
		Batch:     processor.NewBatchProcessor(core.Analyzer, cfg.Triage.Concurrency, log, tp),
		startTime: time.Now(),
	}

	svc.setupEvents()

	var publisher events.Publisher
	if svc.publisher != nil {
		publisher = svc.publisher
	}
	svc.Handler = api.NewHandler(core.Analyzer, svc.Batch, core.Settings, svc.Results, publisher, log)
	svc.Server = server.NewServer(&cfg.Server, log, svc.setupRoutes)

	log.Info("Triage service initialized",
		logger.String("toxicity_url", cfg.Toxicity.URL),
		logger.Int("categories", len(core.Settings.Snapshot().Categories())),
		logger.Int("neighborhoods", len(core.Settings.Snapshot().Neighborhoods())),
		logger.Bool("events_enabled", svc.publisher != nil),
		logger.Bool("auth_enabled", cfg.Auth.Enabled()),
	)
	return svc, nil
}

// setupEvents connects the Redis stream publisher. A failed connection is
// logged and the service continues without events.
func (s *Service) setupEvents() {
	if !s.Config.Redis.Enabled {
		s.Logger.Info("Redis events disabled")
		return
	}

	client, err := events.NewClient(s.Config.Redis)
	if err != nil {
		s.Logger.Warn("Redis unavailable, triage events will not be published",
			logger.String("address", s.Config.Redis.Address),
			logger.Error(err),
		)
		return
	}
	s.redis = client
	s.publisher = events.NewRedisPublisher(client, s.Config.Redis.Stream, s.Logger)
	s.Logger.Info("Redis event publisher connected",
		logger.String("address", s.Config.Redis.Address),
		logger.String("stream", s.Config.Redis.Stream),
	)
}

func (s *Service) setupRoutes(router *gin.Engine) {
	checks := map[string]server.HealthChecker{
		"toxicity": server.PingChecker("toxicity service", server.HealthStatusUnhealthy, s.Toxicity.Health),
	}
	if s.redis != nil {
		checks["redis"] = server.PingChecker("redis", server.HealthStatusDegraded, func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		})
	}
	server.RegisterHealthRoutes(router, server.HealthOptions{
		ServiceName:    s.Config.Service.Name,
		ServiceVersion: s.Config.Service.Version,
		StartTime:      s.startTime,
		Checks:         checks,
	})

	var operatorAuth gin.HandlerFunc
	if s.Config.Auth.Enabled() {
		operatorAuth = auth.Middleware(s.Config.Auth.JWTSecret)
	} else {
		s.Logger.Warn("AUTH_JWT_SECRET not set, operator endpoints are unauthenticated")
	}
	api.SetupRoutes(router, s.Handler, operatorAuth, s.Telemetry.Handler())
}

// Run starts profiling and serves HTTP until ctx is cancelled or a shutdown
// signal arrives.
func (s *Service) Run(ctx context.Context) error {
	profiler, err := profiling.Start(s.Config.Profiling, s.Config.Service.Name, s.Config.Service.Version, s.Logger)
	if err != nil {
		s.Logger.Warn("Continuous profiling not started", logger.Error(err))
	}
	s.profiler = profiler
	profiling.StartPprof(s.Config.Profiling, s.Logger)

	s.Logger.Info("Starting triage HTTP server", logger.Int("port", s.Config.Server.Port))
	defer s.Close()
	return s.Server.RunWithGracefulShutdown(ctx)
}

// Close releases the Redis connection and stops the profiler.
func (s *Service) Close() {
	if err := s.profiler.Stop(); err != nil {
		s.Logger.Warn("Failed to stop profiler", logger.Error(err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Logger.Warn("Failed to close redis client", logger.Error(err))
		}
		s.redis = nil
	}
}
